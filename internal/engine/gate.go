package engine

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/dom"
)

// DefaultDebounce is the pause after the last keystroke before a gated form
// re-checks its required fields.
const DefaultDebounce = 100 * time.Millisecond

// GatedForm enables a form's submit controls only while every required
// field holds a value.
//
// Keystrokes go through Schedule, which cancels the pending check and starts
// a new one, so a burst of typing produces a single check once it pauses.
type GatedForm struct {
	form     *dom.Element
	required []*dom.Element
	submits  []*dom.Element

	clock clock.Clock
	delay time.Duration
	post  func(func()) bool

	pending    *clock.Timer
	generation uint64
	recomputes int
}

func newGatedForm(gf binding.GatedForm, clk clock.Clock, delay time.Duration, post func(func()) bool) *GatedForm {
	return &GatedForm{
		form:     gf.Form,
		required: gf.Required,
		submits:  gf.Submits,
		clock:    clk,
		delay:    delay,
		post:     post,
	}
}

// Complete reports whether every required field is non-empty. A form with
// no required fields is always complete.
func (g *GatedForm) Complete() bool {
	for _, el := range g.required {
		if el.Value() == "" {
			return false
		}
	}
	return true
}

// Recompute applies the current completeness to the submit controls and
// returns it.
func (g *GatedForm) Recompute() bool {
	g.recomputes++
	complete := g.Complete()
	for _, el := range g.submits {
		el.SetDisabled(!complete)
	}
	return complete
}

// Recomputes returns how many times the form has been re-checked.
func (g *GatedForm) Recomputes() int { return g.recomputes }

// Schedule cancels any pending check and schedules a new one after the
// debounce delay.
func (g *GatedForm) Schedule() {
	g.Cancel()
	g.generation++
	gen := g.generation
	g.pending = g.clock.AfterFunc(g.delay, func() {
		g.post(func() {
			// A keystroke may have rescheduled after this timer fired but
			// before the task ran.
			if gen != g.generation || g.pending == nil {
				return
			}
			g.pending = nil
			g.Recompute()
		})
	})
}

// Cancel drops the pending check, if any, and reports whether there was one.
func (g *GatedForm) Cancel() bool {
	if g.pending == nil {
		return false
	}
	g.pending.Stop()
	g.pending = nil
	return true
}

// Pending reports whether a check is scheduled.
func (g *GatedForm) Pending() bool { return g.pending != nil }
