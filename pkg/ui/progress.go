package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
	lineWidth     = 100
)

// Progress prints per-item diagnostics for a download run. On a terminal it
// redraws a single status line; otherwise every saved image gets its own line.
type Progress struct {
	mu          sync.Mutex
	out         io.Writer
	errOut      io.Writer
	interactive bool
	verbose     bool

	query     string
	target    int
	saved     int
	failed    int
	skipped   int
	pages     int
	bytes     int64
	lastPath  string
	startTime time.Time
}

// ProgressOptions configures a Progress
type ProgressOptions struct {
	Out     io.Writer
	ErrOut  io.Writer
	Verbose bool
	// Interactive forces or disables line redrawing. Nil detects a terminal.
	Interactive *bool
}

// NewProgress creates a progress display for a run saving target images
func NewProgress(query string, target int, opts ProgressOptions) *Progress {
	if opts.Out == nil {
		opts.Out = stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = stderr
	}

	interactive := isTerminal(opts.Out)
	if opts.Interactive != nil {
		interactive = *opts.Interactive
	}

	return &Progress{
		out:         opts.Out,
		errOut:      opts.ErrOut,
		interactive: interactive,
		verbose:     opts.Verbose,
		query:       query,
		target:      target,
		startTime:   time.Now(),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PageFetched notes a result page
func (p *Progress) PageFetched(start uint64, items int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages++
	if p.verbose {
		p.breakLine()
		fmt.Fprintf(p.out, "%s start=%d items=%d\n", Magenta("[PAGE]"), start, items)
	}
}

// ImageSaved records a saved image
func (p *Progress) ImageSaved(path string, saved, target int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.saved = saved
	if target > 0 {
		p.target = target
	}
	p.lastPath = path
	if info, err := os.Stat(path); err == nil {
		p.bytes += info.Size()
	}

	if p.interactive {
		p.printProgress()
		return
	}
	fmt.Fprintf(p.out, "%s %d/%d %s\n", Green("✓"), p.saved, p.target, path)
}

// ImageSkipped records an item that was not downloaded
func (p *Progress) ImageSkipped(url, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skipped++
	if p.verbose {
		p.breakLine()
		fmt.Fprintf(p.out, "%s %s (%s)\n", Dim("skip"), url, reason)
	}
}

// ImageFailed prints a per-item failure and continues
func (p *Progress) ImageFailed(url string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed++
	p.breakLine()
	fmt.Fprintf(p.errOut, "%s Failed to download image: %v\n", Red("✗"), err)
	if p.interactive {
		p.printProgress()
	}
}

// SearchFailed prints the failure that ends the run
func (p *Progress) SearchFailed(start uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.errOut, "%s Search failed at start %d: %v\n", Red("✗"), start, err)
}

// Complete prints the final count and a short summary
func (p *Progress) Complete(saved int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		fmt.Fprintln(p.out)
	}
	elapsed := time.Since(p.startTime)

	fmt.Fprintf(p.out, "%s\n", Green(fmt.Sprintf("Downloaded %d images", saved)))

	if p.verbose {
		fmt.Fprintf(p.out, "  %s %s in %s (%.1f images/min, %d pages)\n",
			Dim("•"),
			FormatBytes(p.bytes),
			FormatDuration(elapsed),
			rate(saved, elapsed),
			p.pages,
		)
	}
	if p.failed > 0 {
		fmt.Fprintf(p.out, "  %s %d downloads failed\n", Dim("•"), p.failed)
	}
	if p.skipped > 0 {
		fmt.Fprintf(p.out, "  %s %d results skipped\n", Dim("•"), p.skipped)
	}
}

// Bar returns the progress bar for the current count
func (p *Progress) Bar() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bar()
}

func (p *Progress) bar() string {
	progress := 0.0
	if p.target > 0 {
		progress = float64(p.saved) / float64(p.target)
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(barWidth))

	return fmt.Sprintf("[%s] %d/%d",
		strings.Repeat(ProgressBar, filled)+strings.Repeat(ProgressEmpty, barWidth-filled),
		p.saved, p.target)
}

// printProgress redraws the status line
func (p *Progress) printProgress() {
	elapsed := time.Since(p.startTime)

	line := fmt.Sprintf("%s %s • %.1f/min • %s • %s",
		Cyan(p.query),
		p.bar(),
		rate(p.saved, elapsed),
		FormatBytes(p.bytes),
		p.eta(elapsed),
	)
	if p.failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.failed)))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", lineWidth), line)
}

// breakLine ends a pending status line so the next message starts clean
func (p *Progress) breakLine() {
	if p.interactive && p.saved > 0 {
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", lineWidth))
	}
}

// eta estimates time remaining
func (p *Progress) eta(elapsed time.Duration) string {
	if p.saved == 0 || elapsed <= 0 {
		return "calculating..."
	}

	perSecond := float64(p.saved) / elapsed.Seconds()
	remaining := p.target - p.saved
	if remaining <= 0 {
		return "done"
	}
	return FormatDuration(time.Duration(float64(remaining)/perSecond) * time.Second)
}

func rate(n int, elapsed time.Duration) float64 {
	if elapsed.Minutes() == 0 {
		return 0
	}
	return float64(n) / elapsed.Minutes()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// FormatBytes formats a byte count with binary units
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
