package customsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "gimgdl/pkg/errors"
)

const opSearch = "search"

// maxErrorBody bounds how much of a failed response is read for diagnostics
const maxErrorBody = 64 << 10

// Client issues paginated image searches against the Custom Search API.
// It holds no state besides credentials and one reusable HTTP client.
type Client struct {
	apiKey     string
	engineID   string
	baseURL    string
	options    SearchOptions
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different endpoint
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "?")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its transport is
// wrapped for compression negotiation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		wrapped := *hc
		wrapped.Transport = newCompressionTransport(hc.Transport)
		c.httpClient = &wrapped
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithSearchOptions adds optional filters to every search
func WithSearchOptions(opts SearchOptions) Option {
	return func(c *Client) {
		c.options = opts
	}
}

// NewClient creates a new Custom Search client
func NewClient(apiKey, engineID string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  BaseURL,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: newCompressionTransport(nil),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search fetches one page of image results starting at the 1-based index
// start. A start of 0 is sent as MinStartIndex.
//
// Transport failures return an errors.ErrorTypeTransport error, bodies that
// do not match the response schema an errors.ErrorTypeSchema error, and
// non-2xx responses an errors.ErrorTypeStatus error. Nothing is retried.
func (c *Client) Search(ctx context.Context, query string, start uint64) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.Newf(errs.ErrorTypeValidation, opSearch, "query must not be empty")
	}

	endpoint := BuildSearchURL(c.baseURL, c.apiKey, c.engineID, query, start, c.options)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeValidation, opSearch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeTransport, opSearch, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeTransport, opSearch, fmt.Errorf("failed to read response body: %w", err))
	}

	return decodeResponse(body)
}

// decodeResponse parses a search response body and checks its kind tag
func decodeResponse(body []byte) (*SearchResponse, error) {
	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeSchema,
			Op:      opSearch,
			Message: fmt.Sprintf("failed to parse JSON: %v (body: %s)", err, preview(body)),
			Err:     err,
		}
	}

	if result.Kind != KindSearch {
		return nil, errs.Newf(errs.ErrorTypeSchema, opSearch, "unexpected kind %q", result.Kind)
	}

	return &result, nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		return errs.Status(opSearch, resp.StatusCode, apiErr.Error.Message)
	}
	return errs.Status(opSearch, resp.StatusCode, "")
}

// redactedError hides the API key from messages that echo the request URL
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "REDACTED"), err: err}
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
