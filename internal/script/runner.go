package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/starford/warpboard/internal/apperr"
	"github.com/starford/warpboard/internal/browser"
	"github.com/starford/warpboard/internal/dom"
	"github.com/starford/warpboard/internal/engine"
)

// pollInterval is how often a failing expectation is re-checked.
const pollInterval = 10 * time.Millisecond

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int           `json:"index" yaml:"index"`
	Action string        `json:"action" yaml:"action"`
	Took   time.Duration `json:"took" yaml:"took"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the outcome of a script run.
type Report struct {
	Name   string       `json:"name" yaml:"name"`
	Steps  []StepResult `json:"steps" yaml:"steps"`
	Passed bool         `json:"passed" yaml:"passed"`
}

// Runner replays scripts against a session.
type Runner struct {
	session *browser.Session
	clock   clock.Clock
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used by wait steps and expectation deadlines.
func WithClock(c clock.Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// NewRunner creates a runner driving session.
func NewRunner(session *browser.Session, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{session: session, clock: clock.New(), logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes s and stops at the first failing step. The report covers
// every step that ran; the error is that of the failing step.
func (r *Runner) Run(ctx context.Context, s *Script) (*Report, error) {
	rep := &Report{Name: s.Name}
	logger := r.logger.With(slog.String("script", s.Name))

	if s.Open != "" {
		if err := r.session.Open(ctx, s.Open); err != nil {
			return rep, err
		}
	}

	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		start := r.clock.Now()
		err := r.step(ctx, st)
		res := StepResult{Index: i + 1, Action: st.Action(), Took: r.clock.Since(start)}
		if err != nil {
			res.Error = err.Error()
			rep.Steps = append(rep.Steps, res)
			logger.Warn("step failed",
				slog.Int("step", res.Index),
				slog.String("action", res.Action),
				slog.String("error", res.Error))
			return rep, fmt.Errorf("step %d (%s): %w", res.Index, res.Action, err)
		}
		rep.Steps = append(rep.Steps, res)
		logger.Debug("step done", slog.Int("step", res.Index), slog.String("action", res.Action))
	}
	rep.Passed = true
	logger.Info("script passed", slog.Int("steps", len(rep.Steps)))
	return rep, nil
}

func (r *Runner) step(ctx context.Context, st Step) error {
	switch {
	case st.Open != "":
		return r.session.Open(ctx, st.Open)
	case st.Click != "":
		return r.fire(st.Click, func(el *dom.Element) []*dom.Event {
			return []*dom.Event{{Type: dom.EventClick, Target: el}}
		})
	case st.Type != nil:
		return r.typeText(st.Type)
	case st.Select != nil:
		return r.selectValue(st.Select)
	case st.Key != nil:
		return r.fire(st.Key.Selector, func(el *dom.Element) []*dom.Event {
			return []*dom.Event{
				{Type: dom.EventKeyDown, Target: el, Key: st.Key.Key},
				{Type: dom.EventKeyUp, Target: el, Key: st.Key.Key},
			}
		})
	case st.Submit != "":
		return r.fire(st.Submit, func(el *dom.Element) []*dom.Event {
			return []*dom.Event{{Type: dom.EventSubmit, Target: el}}
		})
	case st.Wait != 0:
		return r.wait(ctx, st.Wait)
	case st.Expect != nil:
		return r.expect(ctx, st.Expect)
	}
	return fmt.Errorf("%w: empty step", apperr.ErrInvalidScript)
}

func (r *Runner) page() (*engine.Page, error) {
	p := r.session.Page()
	if p == nil {
		return nil, fmt.Errorf("%w: no page open", apperr.ErrNoElement)
	}
	return p, nil
}

// find resolves selector on the loop of p.
func find(p *engine.Page, selector string) (*dom.Element, error) {
	var (
		el  *dom.Element
		err error
	)
	if !p.Do(func(doc *dom.Document) { el, err = doc.QuerySelector(selector) }) {
		return nil, fmt.Errorf("%w: page closed", apperr.ErrNoElement)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidScript, err)
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNoElement, selector)
	}
	return el, nil
}

// fire dispatches the events built for the element matching selector and
// waits for the page to settle.
func (r *Runner) fire(selector string, events func(*dom.Element) []*dom.Event) error {
	p, err := r.page()
	if err != nil {
		return err
	}
	el, err := find(p, selector)
	if err != nil {
		return err
	}
	for _, ev := range events(el) {
		p.Dispatch(ev)
	}
	r.session.Settle()
	return nil
}

func (r *Runner) typeText(st *TypeStep) error {
	p, err := r.page()
	if err != nil {
		return err
	}
	el, err := find(p, st.Selector)
	if err != nil {
		return err
	}
	var value string
	p.Do(func(*dom.Document) {
		if st.Clear {
			el.SetValue("")
		}
		value = el.Value()
	})
	for _, ch := range st.Text {
		key := string(ch)
		value += key
		p.Dispatch(&dom.Event{Type: dom.EventKeyDown, Target: el, Key: key})
		p.Do(func(*dom.Document) { el.SetValue(value) })
		p.Dispatch(&dom.Event{Type: dom.EventInput, Target: el, Key: key})
		p.Dispatch(&dom.Event{Type: dom.EventKeyUp, Target: el, Key: key})
	}
	if st.Commit {
		p.Dispatch(&dom.Event{Type: dom.EventChange, Target: el})
	}
	r.session.Settle()
	return nil
}

func (r *Runner) selectValue(st *SelectStep) error {
	p, err := r.page()
	if err != nil {
		return err
	}
	el, err := find(p, st.Selector)
	if err != nil {
		return err
	}
	p.Do(func(*dom.Document) { el.SetValue(st.Value) })
	p.Dispatch(&dom.Event{Type: dom.EventChange, Target: el})
	r.session.Settle()
	return nil
}

func (r *Runner) wait(ctx context.Context, d time.Duration) error {
	t := r.clock.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		r.session.Settle()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// expect re-checks e until it holds or its deadline passes.
func (r *Runner) expect(ctx context.Context, e *Expectation) error {
	within := e.Within
	if within == 0 {
		within = DefaultWithin
	}
	deadline := r.clock.Now().Add(within)
	for {
		err := r.check(e)
		if err == nil {
			return nil
		}
		if !r.clock.Now().Before(deadline) {
			return err
		}
		t := r.clock.Timer(pollInterval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

func (r *Runner) check(e *Expectation) error {
	if e.URL != "" && r.session.URL() != e.URL {
		return fmt.Errorf("%w: url is %q, want %q", apperr.ErrExpectation, r.session.URL(), e.URL)
	}
	p, err := r.page()
	if err != nil {
		return err
	}
	if e.Title != "" {
		var got string
		p.Do(func(doc *dom.Document) { got = doc.Title() })
		if got != e.Title {
			return fmt.Errorf("%w: title is %q, want %q", apperr.ErrExpectation, got, e.Title)
		}
	}
	if e.Selector == "" {
		return nil
	}

	el, err := find(p, e.Selector)
	if e.Missing {
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s is present", apperr.ErrExpectation, e.Selector)
		case errors.Is(err, apperr.ErrNoElement):
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	var problems []string
	p.Do(func(*dom.Document) {
		if e.Hidden != nil && el.Hidden() != *e.Hidden {
			problems = append(problems, fmt.Sprintf("hidden is %t", el.Hidden()))
		}
		if e.Disabled != nil && el.Disabled() != *e.Disabled {
			problems = append(problems, fmt.Sprintf("disabled is %t", el.Disabled()))
		}
		if e.Value != nil && el.Value() != *e.Value {
			problems = append(problems, fmt.Sprintf("value is %q, want %q", el.Value(), *e.Value))
		}
		if e.Text != nil {
			if got := strings.TrimSpace(el.Text()); got != *e.Text {
				problems = append(problems, fmt.Sprintf("text is %q, want %q", got, *e.Text))
			}
		}
		for name, want := range e.Attr {
			if got, ok := el.Attr(name); !ok || got != want {
				problems = append(problems, fmt.Sprintf("%s is %q, want %q", name, got, want))
			}
		}
	})
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s: %s", apperr.ErrExpectation, e.Selector, strings.Join(problems, ", "))
	}
	return nil
}
