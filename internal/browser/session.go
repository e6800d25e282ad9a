// Package browser loads console pages over HTTP and keeps an engine
// attached to whichever page is current.
package browser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/dom"
	"github.com/starford/warpboard/internal/engine"
	"github.com/starford/warpboard/internal/transport"
)

// Visit is one entry of the session history.
type Visit struct {
	URL    string
	Status int
	Reload bool
}

// Session is a headless page view. It is the engine's navigator: Assign
// and Reload fetch the page, detach the old one and attach the new one.
type Session struct {
	client *transport.Client
	engine *engine.Engine
	logger *slog.Logger

	mu      sync.Mutex
	page    *engine.Page
	current string
	history []Visit
}

// New creates a session. opts configure the engine it drives.
func New(client *transport.Client, table *binding.Table, logger *slog.Logger, opts ...engine.Option) *Session {
	s := &Session{client: client, logger: logger}
	opts = append([]engine.Option{engine.WithLogger(logger)}, opts...)
	s.engine = engine.New(table, client, s, opts...)
	return s
}

// Open navigates to path.
func (s *Session) Open(ctx context.Context, path string) error {
	return s.Assign(ctx, path)
}

// Assign navigates to path.
func (s *Session) Assign(ctx context.Context, path string) error {
	return s.load(ctx, path, false)
}

// Reload fetches the current page again.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == "" {
		return fmt.Errorf("browser: reload before any page was opened")
	}
	return s.load(ctx, current, true)
}

func (s *Session) load(ctx context.Context, path string, reload bool) error {
	fetched, err := s.client.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("browser: load %s: %w", path, err)
	}
	doc, err := dom.Parse(bytes.NewReader(fetched.Body))
	if err != nil {
		return fmt.Errorf("browser: load %s: %w", path, err)
	}
	if fetched.Status >= http.StatusBadRequest {
		s.logger.Warn("page answered with error status",
			slog.String("url", fetched.URL.String()),
			slog.Int("status", fetched.Status))
	}

	page := s.engine.Attach(context.Background(), doc)
	current := fetched.URL.RequestURI()

	s.mu.Lock()
	old := s.page
	s.page = page
	s.current = current
	s.history = append(s.history, Visit{URL: current, Status: fetched.Status, Reload: reload})
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}

	s.logger.Info("page loaded",
		slog.String("url", current),
		slog.Int("status", fetched.Status),
		slog.Bool("reload", reload),
		slog.String("title", doc.Title()))
	return nil
}

// Page returns the current page, or nil before the first load.
func (s *Session) Page() *engine.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// URL returns the request URI of the current page.
func (s *Session) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// History returns every page load so far.
func (s *Session) History() []Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Visit(nil), s.history...)
}

// Settle waits until the current page has no requests in flight. When a
// request navigates, the new page is settled as well.
func (s *Session) Settle() {
	for {
		p := s.Page()
		if p == nil {
			return
		}
		p.Settle()
		if s.Page() == p {
			return
		}
	}
}

// Close detaches the current page.
func (s *Session) Close() {
	s.mu.Lock()
	p := s.page
	s.page = nil
	s.mu.Unlock()
	if p != nil {
		p.Close()
	}
}
