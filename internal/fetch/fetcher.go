// Package fetch retrieves source pages over HTTP. Extractors never fetch
// anything themselves; the importer uses this client for the source page
// and for any extra pages an extractor declares.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dertown/eventscrape/internal/logger"
)

// Browser-like request headers. Several of the configured sources block
// default script user agents.
const (
	headerUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	headerAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	headerAcceptLanguage = "en-US,en;q=0.9"
	headerReferer        = "https://www.google.com/"
)

const (
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 15 * time.Second
	// maxResponseBodyBytes limits the size of fetched page responses.
	maxResponseBodyBytes = 10 * 1024 * 1024
	// retryDelay separates the single retry from the failed first attempt.
	retryDelay = 2 * time.Second
)

// ErrHTTPStatus is returned when the server answers with a 4xx or 5xx
// status. 4xx responses are permanent and never retried.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Result is one fetched page.
type Result struct {
	StatusCode   int
	Body         string
	LastModified *time.Time
}

// Client fetches pages with the fixed header set, a bounded timeout, and
// one retry for transient failures.
type Client struct {
	httpClient *http.Client
	log        logger.Interface
}

// NewClient creates a page fetch client. A zero timeout uses
// DefaultTimeout.
func NewClient(timeout time.Duration, log logger.Interface) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("fetch"),
	}
}

// Get fetches rawURL. Transient failures (network errors, 5xx) are retried
// once; 4xx responses fail immediately.
func (c *Client) Get(ctx context.Context, rawURL string) (*Result, error) {
	result, err := c.get(ctx, rawURL)
	if err == nil || !isTransient(err) {
		return result, err
	}

	c.log.Warn("Retrying transient fetch failure", "url", rawURL, "error", err)
	select {
	case <-time.After(retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.get(ctx, rawURL)
}

// Head issues a HEAD request and returns the page's Last-Modified time,
// or nil when the server does not send one. Used by the staleness check;
// failures are not retried because the next scheduled pass covers them.
func (c *Client) Head(ctx context.Context, rawURL string) (*time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("head new request: %w", err)
	}
	req.Header.Set("User-Agent", headerUserAgent)
	req.Header.Set("Accept", headerAccept)
	req.Header.Set("Accept-Language", headerAcceptLanguage)
	req.Header.Set("Referer", headerReferer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("head %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("head %s: %w %d", rawURL, ErrHTTPStatus, resp.StatusCode)
	}

	v := resp.Header.Get("Last-Modified")
	if v == "" {
		return nil, nil
	}
	t, parseErr := http.ParseTime(v)
	if parseErr != nil {
		c.log.Warn("Could not parse Last-Modified header", "url", rawURL, "value", v)
		return nil, nil
	}
	return &t, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch new request: %w", err)
	}
	req.Header.Set("User-Agent", headerUserAgent)
	req.Header.Set("Accept", headerAccept)
	req.Header.Set("Accept-Language", headerAcceptLanguage)
	req.Header.Set("Referer", headerReferer)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, &transientError{fmt.Errorf("fetch %s: %w", rawURL, doErr)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err = fmt.Errorf("fetch %s: %w %d", rawURL, ErrHTTPStatus, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &transientError{err}
		}
		return nil, err
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if readErr != nil {
		return nil, &transientError{fmt.Errorf("fetch read body %s: %w", rawURL, readErr)}
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if v := resp.Header.Get("Last-Modified"); v != "" {
		if t, parseErr := http.ParseTime(v); parseErr == nil {
			result.LastModified = &t
		} else {
			c.log.Warn("Could not parse Last-Modified header", "url", rawURL, "value", v)
		}
	}
	return result, nil
}

// transientError marks failures worth one retry.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}
