package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the kinds of failure a download run can hit
type ErrorType string

const (
	ErrorTypeTransport  ErrorType = "transport"
	ErrorTypeSchema     ErrorType = "schema"
	ErrorTypeStatus     ErrorType = "status"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a typed failure with the operation that produced it
type Error struct {
	Type    ErrorType
	Op      string
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s error (code %d): %s", e.Op, e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Op, e.Type, msg)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same type.
// A target with an empty Op matches any operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type != e.Type {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// New creates a typed error wrapping err
func New(typ ErrorType, op string, err error) *Error {
	return &Error{Type: typ, Op: op, Err: err}
}

// Newf creates a typed error with a formatted message
func Newf(typ ErrorType, op string, format string, args ...interface{}) *Error {
	return &Error{Type: typ, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Status creates a status error for a non-success HTTP response
func Status(op string, code int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("unexpected status code: %d", code)
	}
	return &Error{Type: ErrorTypeStatus, Op: op, Code: code, Message: message}
}

// Sentinels usable with errors.Is
var (
	Transport  = &Error{Type: ErrorTypeTransport}
	Schema     = &Error{Type: ErrorTypeSchema}
	StatusErr  = &Error{Type: ErrorTypeStatus}
	Decode     = &Error{Type: ErrorTypeDecode}
	Filesystem = &Error{Type: ErrorTypeFilesystem}
	Validation = &Error{Type: ErrorTypeValidation}
)

// TypeOf returns the ErrorType of the first *Error in err's chain
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsStatusCode checks whether err carries the given HTTP status code
func IsStatusCode(err error, code int) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == ErrorTypeStatus && e.Code == code
	}
	return false
}
