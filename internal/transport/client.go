// Package transport issues the console's HTTP requests.
package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/starford/warpboard/internal/engine"
)

// RequestIDHeader is the header chi's RequestID middleware reads.
const RequestIDHeader = "X-Request-Id"

// Client sends requests relative to a base URL and keeps the session
// cookies the server hands out.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying client. Its Jar is kept if set,
// otherwise a new one is created.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		jar := c.http.Jar
		c.http = hc
		if c.http.Jar == nil {
			c.http.Jar = jar
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("transport: base url must be absolute: %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("transport: cookie jar: %w", err)
	}
	c := &Client{
		base:   base,
		http:   &http.Client{Jar: jar},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resolve returns the absolute URL of path.
func (c *Client) Resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("transport: parse path %q: %w", path, err)
	}
	return c.base.ResolveReference(ref), nil
}

// Do sends a bodyless request and reports its status. The body is drained
// and discarded.
func (c *Client) Do(ctx context.Context, method, path string) (engine.Response, error) {
	resp, err := c.send(ctx, method, path)
	if err != nil {
		return engine.Response{}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return engine.Response{Status: resp.StatusCode}, nil
}

// Page is a fetched HTML page.
type Page struct {
	URL    *url.URL
	Status int
	Body   []byte
}

// Get fetches path, following redirects.
func (c *Client) Get(ctx context.Context, path string) (*Page, error) {
	resp, err := c.send(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transport: read body: %w", err)
	}
	return &Page{URL: resp.Request.URL, Status: resp.StatusCode, Body: body}, nil
}

func (c *Client) send(ctx context.Context, method, path string) (*http.Response, error) {
	u, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	id := uuid.NewString()
	req.Header.Set(RequestIDHeader, id)
	if method == http.MethodGet {
		req.Header.Set("Accept", "text/html")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("request_id", id),
			slog.String("method", method),
			slog.String("url", u.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("transport: %s %s: %w", method, path, err)
	}
	c.logger.Debug("request done",
		slog.String("request_id", id),
		slog.String("method", method),
		slog.String("url", u.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)))
	return resp, nil
}
