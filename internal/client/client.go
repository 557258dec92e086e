// Package client provides the shared HTTP client handed to crawl handlers:
// plain fetches, parsed-page fetches and file downloads, with cookie
// persistence and polite request pacing.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spinneret/spinneret/internal/urlutil"
)

const defaultUserAgent = "spinneret/1.0"

// Config holds client settings. The client is read-only after construction
// and safe to share across all workers.
type Config struct {
	// WorkingDir is the root directory for downloads. Defaults to ".".
	WorkingDir string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string
	// RequestDelay spaces out requests to reduce server load. Zero
	// disables pacing.
	RequestDelay time.Duration
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration
}

// Client wraps http.Client with a cookie jar, default headers and pacing.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New constructs a Client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "."
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}
	var limiter *rate.Limiter
	if cfg.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RequestDelay), 1)
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// File resolves name inside the working directory, creating parent
// directories when mkdir is set.
func (c *Client) File(name string, mkdir bool) (string, error) {
	path := filepath.Join(c.cfg.WorkingDir, name)
	if mkdir {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create download dir: %w", err)
		}
	}
	return path, nil
}

// Fetch performs an HTTP request to url. The effective pre-request pause is
// the larger of the configured RequestDelay and the per-call delay. The
// caller owns the response body.
func (c *Client) Fetch(ctx context.Context, method, url string, delay time.Duration) (*http.Response, error) {
	if err := c.pace(ctx, delay); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	c.logger.Debug("request finished",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)
	return resp, nil
}

// FetchPage GETs url and parses the body as HTML. The returned document is
// nil exactly when the response status is not a success; the response is
// still returned so callers can inspect status and headers. The body is
// fully consumed and closed in both cases.
func (c *Client) FetchPage(ctx context.Context, url string) (*http.Response, *goquery.Document, error) {
	resp, err := c.Fetch(ctx, http.MethodGet, url, 0)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read side
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("parse page %s: %w", url, err)
	}
	return resp, doc, nil
}

// Download GETs url and streams the body into a file under the working
// directory. When filename is empty it is derived from the URL path. It
// returns the file name used and the number of bytes written.
func (c *Client) Download(ctx context.Context, url, filename string) (string, int64, error) {
	if filename == "" {
		filename = urlutil.Filename(url)
	}
	if filename == "" {
		return "", 0, fmt.Errorf("download %s: cannot derive file name", url)
	}

	resp, err := c.Fetch(ctx, http.MethodGet, url, 0)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // read side
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", 0, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	path, err := c.File(filename, true)
	if err != nil {
		return "", 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}
	size, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	c.logger.Debug("download finished",
		zap.String("url", url),
		zap.String("file", filename),
		zap.Int64("bytes", size),
	)
	return filename, size, nil
}

// pace blocks until the next request slot. The configured steady delay is
// enforced by the limiter; a larger per-call delay extends the pause.
func (c *Client) pace(ctx context.Context, delay time.Duration) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request pacing: %w", err)
		}
	}
	if delay > c.cfg.RequestDelay {
		extra := delay - c.cfg.RequestDelay
		c.logger.Debug("request delay", zap.Duration("extra", extra))
		timer := time.NewTimer(extra)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("request pacing: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil
}
