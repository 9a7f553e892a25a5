package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "gimgdl/pkg/errors"
	"gimgdl/pkg/storage"
)

const opFetch = "fetch"

// DefaultMaxBytes caps the size of a single downloaded image
const DefaultMaxBytes int64 = 64 << 20

const defaultUserAgent = "gimgdl/1.0"

// Fetcher downloads one image and hands it to storage
type Fetcher struct {
	httpClient *http.Client
	store      *storage.Manager
	strategy   Strategy
	maxBytes   int64
	userAgent  string
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client used for image downloads
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithTimeout sets the per-image timeout
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.httpClient.Timeout = d
		}
	}
}

// WithStrategy selects how bytes are prepared before saving
func WithStrategy(s Strategy) Option {
	return func(f *Fetcher) {
		if s != nil {
			f.strategy = s
		}
	}
}

// WithMaxBytes limits the accepted body size. Zero or less keeps the default.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent to image hosts
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// New creates a Fetcher that persists through store
func New(store *storage.Manager, opts ...Option) *Fetcher {
	if store == nil {
		store = storage.NewManager()
	}
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		store:      store,
		strategy:   PreserveStrategy{},
		maxBytes:   DefaultMaxBytes,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Strategy returns the active save strategy
func (f *Fetcher) Strategy() Strategy {
	return f.strategy
}

// FetchAndSave downloads rawURL into outputDir and returns the saved path.
// Every failure is specific to this one image.
func (f *Fetcher) FetchAndSave(ctx context.Context, rawURL, outputDir string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errs.Newf(errs.ErrorTypeValidation, opFetch, "invalid image url %q", rawURL)
	}

	data, err := f.download(ctx, u.String())
	if err != nil {
		return "", err
	}

	ext, out, err := f.strategy.Prepare(rawURL, data)
	if err != nil {
		return "", err
	}

	return f.store.Save(outputDir, ext, out)
}

func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeValidation, opFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeTransport, opFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, errs.Status(opFetch, resp.StatusCode, "")
	}

	if resp.ContentLength > f.maxBytes {
		return nil, errs.Newf(errs.ErrorTypeTransport, opFetch, "image is %d bytes, limit is %d", resp.ContentLength, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errs.New(errs.ErrorTypeTransport, opFetch, fmt.Errorf("failed to read image body: %w", err))
	}
	if int64(len(data)) > f.maxBytes {
		return nil, errs.Newf(errs.ErrorTypeTransport, opFetch, "image exceeds limit of %d bytes", f.maxBytes)
	}

	return data, nil
}
