package downloader

import (
	stderrors "errors"
	"fmt"

	errs "gimgdl/pkg/errors"
)

// Severity decides whether the loop aborts or moves on
type Severity int

const (
	// Recoverable failures affect one image and are skipped
	Recoverable Severity = iota
	// Fatal failures abort the run
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Recoverable:
		return "recoverable"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Failure tags an error with the policy the loop applied to it
type Failure struct {
	Severity Severity
	// Start is the search start index in effect when the failure happened
	Start uint64
	// URL is the image link for fetch failures, empty for search failures
	URL string
	Err error
}

func (f *Failure) Error() string {
	if f.URL != "" {
		return fmt.Sprintf("%s failure fetching %s: %v", f.Severity, f.URL, f.Err)
	}
	return fmt.Sprintf("%s failure searching at start %d: %v", f.Severity, f.Start, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// ErrorType returns the taxonomy type of the underlying error
func (f *Failure) ErrorType() errs.ErrorType {
	return errs.TypeOf(f.Err)
}

// IsFatal reports whether err carries a fatal Failure
func IsFatal(err error) bool {
	var f *Failure
	return stderrors.As(err, &f) && f.Severity == Fatal
}
