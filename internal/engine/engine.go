// Package engine attaches the console behaviours to a document.
//
// An Engine holds what is shared across pages: the binding table, the
// network requester, the navigator and timing. Attach binds it to one
// document and returns a Page, which owns that document from a single event
// loop for as long as the page is shown.
package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/starford/warpboard/internal/binding"
)

// Response is the outcome of a request issued by a behaviour.
type Response struct {
	Status int
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Requester issues HTTP requests on behalf of the page.
type Requester interface {
	Do(ctx context.Context, method, path string) (Response, error)
}

// Navigator moves the view to another page or reloads the current one.
type Navigator interface {
	Assign(ctx context.Context, path string) error
	Reload(ctx context.Context) error
}

// Endpoints are the server paths the behaviours call.
type Endpoints struct {
	Logout string `yaml:"logout"`
	// Delete is a brace template with an {id} placeholder.
	Delete string `yaml:"delete"`
	// Home is where the view goes after logging out.
	Home string `yaml:"home"`
}

// DefaultEndpoints returns the console's endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Logout: "/logout",
		Delete: "/alert/{id}",
		Home:   "/",
	}
}

func (e Endpoints) deletePath(id string) string {
	t := NewActionTemplate(e.Delete, binding.TokenBrace)
	t.Set("id", url.PathEscape(id))
	return t.Resolve()
}

// Engine attaches behaviours to documents.
type Engine struct {
	table     *binding.Table
	requester Requester
	navigator Navigator

	clock     clock.Clock
	logger    *slog.Logger
	debounce  time.Duration
	endpoints Endpoints
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDebounce sets the keystroke debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithEndpoints sets the server paths.
func WithEndpoints(ep Endpoints) Option {
	return func(e *Engine) {
		e.endpoints = ep
	}
}

// New creates an engine.
func New(table *binding.Table, requester Requester, navigator Navigator, opts ...Option) *Engine {
	e := &Engine{
		table:     table,
		requester: requester,
		navigator: navigator,
		clock:     clock.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		debounce:  DefaultDebounce,
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the binding table.
func (e *Engine) Table() *binding.Table { return e.table }

// methods used by the behaviours
const (
	methodLogout = http.MethodPost
	methodDelete = http.MethodDelete
)
