// Package downloader drives a search-and-download run: it pages through
// search results, fetches each image and decides which failures abort.
package downloader

import (
	"context"
	"os"
	"time"

	"gimgdl/pkg/customsearch"
	"gimgdl/pkg/logger"
	"gimgdl/pkg/metadata"
	"gimgdl/pkg/metrics"
)

// Searcher fetches one page of image results at a 1-based start index
type Searcher interface {
	Search(ctx context.Context, query string, start uint64) (*customsearch.SearchResponse, error)
}

// ImageFetcher downloads one image into dir and returns the saved path
type ImageFetcher interface {
	FetchAndSave(ctx context.Context, url, dir string) (string, error)
}

// Reporter receives user-facing progress events. Failures are passed as
// *Failure values.
type Reporter interface {
	PageFetched(start uint64, items int)
	ImageSaved(path string, saved, target int)
	ImageSkipped(url, reason string)
	ImageFailed(url string, err error)
	SearchFailed(start uint64, err error)
}

// skip reasons
const (
	reasonTooSmall = "too_small"
	reasonNoLink   = "no_link"
)

// Loop pages through search results and saves images until a target count
// is reached or the results run out.
type Loop struct {
	searcher  Searcher
	fetcher   ImageFetcher
	reporter  Reporter
	logger    logger.Logger
	metrics   *metrics.Metrics
	minWidth  int
	minHeight int
	maxPages  int
	sidecars  bool
}

// Option configures a Loop
type Option func(*Loop)

// WithReporter sets the progress reporter
func WithReporter(r Reporter) Option {
	return func(l *Loop) {
		if r != nil {
			l.reporter = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.logger = log
		}
	}
}

// WithMetrics records run metrics into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithMinSize skips items whose reported dimensions are below w x h
func WithMinSize(w, h int) Option {
	return func(l *Loop) {
		l.minWidth = w
		l.minHeight = h
	}
}

// WithMaxPages stops after n search pages. Zero means no limit.
func WithMaxPages(n int) Option {
	return func(l *Loop) {
		l.maxPages = n
	}
}

// WithMetadata writes a JSON sidecar next to every saved image
func WithMetadata(enabled bool) Option {
	return func(l *Loop) {
		l.sidecars = enabled
	}
}

// NewLoop creates a download loop
func NewLoop(searcher Searcher, fetcher ImageFetcher, opts ...Option) *Loop {
	l := &Loop{
		searcher: searcher,
		fetcher:  fetcher,
		reporter: nopReporter{},
		logger:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run downloads images for query into outputDir and returns how many were
// saved. A search failure aborts the run and is returned as a fatal
// *Failure along with the count saved so far. Fetch failures are reported
// and skipped.
func (l *Loop) Run(ctx context.Context, query string, target int, outputDir string) (int, error) {
	var (
		offset uint64
		saved  int
		pages  int
	)

	if target <= 0 {
		return 0, nil
	}

	log := l.logger.WithFields(map[string]interface{}{
		"query":  query,
		"target": target,
		"output": outputDir,
	})
	log.Info("Starting download run")

	for {
		if err := ctx.Err(); err != nil {
			return saved, err
		}

		start := customsearch.StartIndex(offset)
		page, err := l.searcher.Search(ctx, query, start)
		pages++
		if err != nil {
			l.metrics.IncSearch("error")
			f := &Failure{Severity: Fatal, Start: start, Err: err}
			l.metrics.IncFailure(f.Severity.String(), string(f.ErrorType()))
			log.WithError(err).ErrorWithFields("Search failed", map[string]interface{}{
				"start":      start,
				"error_type": f.ErrorType(),
			})
			l.reporter.SearchFailed(start, f)
			return saved, f
		}
		l.metrics.IncSearch("ok")

		logger.LogPage(log, query, start, len(page.Items))
		l.reporter.PageFetched(start, len(page.Items))

		if len(page.Items) == 0 {
			log.InfoWithFields("No more results", map[string]interface{}{"start": start, "saved": saved})
			return saved, nil
		}

		for _, item := range page.Items {
			if err := ctx.Err(); err != nil {
				return saved, err
			}

			if reason, skip := l.shouldSkip(item); skip {
				l.metrics.IncSkipped(reason)
				log.DebugWithFields("Skipping item", map[string]interface{}{
					"url":    item.Link,
					"reason": reason,
				})
				l.reporter.ImageSkipped(item.Link, reason)
				continue
			}

			if path, ok := l.fetch(ctx, log, query, start, item, outputDir); ok {
				saved++
				l.reporter.ImageSaved(path, saved, target)
				if saved >= target {
					log.InfoWithFields("Target reached", map[string]interface{}{"saved": saved})
					return saved, nil
				}
			}
		}

		offset += uint64(len(page.Items))

		if !page.HasNextPage() {
			log.InfoWithFields("Provider reported no further pages", map[string]interface{}{
				"start": start,
				"saved": saved,
			})
			return saved, nil
		}
		if l.maxPages > 0 && pages >= l.maxPages {
			log.InfoWithFields("Page limit reached", map[string]interface{}{
				"pages": pages,
				"saved": saved,
			})
			return saved, nil
		}
	}
}

// fetch downloads one item and reports whether it was saved
func (l *Loop) fetch(ctx context.Context, log logger.Logger, query string, start uint64, item customsearch.Item, outputDir string) (string, bool) {
	link := item.Link
	began := time.Now()
	path, err := l.fetcher.FetchAndSave(ctx, link, outputDir)
	l.metrics.ObserveFetch(time.Since(began))
	logger.LogDownload(log, link, path, err)

	if err != nil {
		f := &Failure{Severity: Recoverable, Start: start, URL: link, Err: err}
		l.metrics.IncFailure(f.Severity.String(), string(f.ErrorType()))
		l.reporter.ImageFailed(link, f)
		return "", false
	}

	var size int64
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	l.metrics.AddSaved(size)

	if l.sidecars {
		if err := metadata.FromItem(item, query, start, path).Save(); err != nil {
			log.WithError(err).WarnWithFields("Failed to write metadata", map[string]interface{}{"path": path})
		}
	}
	return path, true
}

func (l *Loop) shouldSkip(item customsearch.Item) (string, bool) {
	if item.Link == "" {
		return reasonNoLink, true
	}
	if !item.MeetsMinimum(l.minWidth, l.minHeight) {
		return reasonTooSmall, true
	}
	return "", false
}

type nopReporter struct{}

func (nopReporter) PageFetched(uint64, int)     {}
func (nopReporter) ImageSaved(string, int, int) {}
func (nopReporter) ImageSkipped(string, string) {}
func (nopReporter) ImageFailed(string, error)   {}
func (nopReporter) SearchFailed(uint64, error)  {}
