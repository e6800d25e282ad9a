package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/dom"
)

// Page is an engine attached to one document.
//
// Concurrency model: a single loop goroutine owns the document and every
// behaviour's state. Events, debounce firings and request outcomes are
// tasks on that loop and run one at a time in the order they were posted.
// Requests themselves run off the loop; navigation happens from the request
// goroutine once the response is in.
type Page struct {
	eng  *Engine
	doc  *dom.Document
	plan *binding.Plan

	resolvers map[any]*Resolver
	gates     map[any]*GatedForm
	modals    map[any]*Modal

	ctx    context.Context
	cancel context.CancelFunc

	tasks    chan func()
	inflight sync.WaitGroup
	stopCh   chan struct{}
	stopped  chan struct{}
	closed   atomic.Bool
}

// Attach scans doc, wires every behaviour, runs the initial template and
// gate pass, and starts the page loop. Call Close when the page goes away.
func (e *Engine) Attach(ctx context.Context, doc *dom.Document) *Page {
	ctx, cancel := context.WithCancel(ctx)
	p := &Page{
		eng:       e,
		doc:       doc,
		plan:      e.table.Scan(doc),
		resolvers: make(map[any]*Resolver),
		gates:     make(map[any]*GatedForm),
		modals:    make(map[any]*Modal),
		ctx:       ctx,
		cancel:    cancel,
		tasks:     make(chan func(), 256),
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	for _, tf := range p.plan.TemplateForms {
		r := newResolver(tf, e.table.Markup())
		r.RefreshAll()
		p.resolvers[tf.Form.Key()] = r
	}
	for _, gf := range p.plan.GatedForms {
		g := newGatedForm(gf, e.clock, e.debounce, p.post)
		g.Recompute()
		p.gates[gf.Form.Key()] = g
	}
	for _, cm := range p.plan.Modals {
		p.modals[cm.Element.Key()] = newModal(cm.Element, cm.Confirms, e.table.Markup().DeleteIDAttr)
	}

	doc.Listen(p.handle, e.table.EventTypes()...)

	e.logger.Debug("page attached",
		slog.String("title", doc.Title()),
		slog.String("delete_mode", string(p.plan.Mode)),
		slog.Int("template_forms", len(p.plan.TemplateForms)),
		slog.Int("gated_forms", len(p.plan.GatedForms)),
		slog.Int("modals", len(p.plan.Modals)))

	go p.run()
	return p
}

func (p *Page) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.stopCh:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// post queues task on the loop. It reports false once the page is closed.
func (p *Page) post(task func()) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	case <-p.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it. Use it to read page state from
// other goroutines.
func (p *Page) Do(fn func(doc *dom.Document)) bool {
	done := make(chan struct{})
	if !p.post(func() {
		defer close(done)
		fn(p.doc)
	}) {
		return false
	}
	select {
	case <-done:
		return true
	case <-p.stopped:
		return false
	}
}

// Dispatch delivers ev to the document and waits until it has been handled.
func (p *Page) Dispatch(ev *dom.Event) bool {
	return p.Do(func(doc *dom.Document) {
		doc.Dispatch(ev)
	})
}

// Settle waits for in-flight requests to finish and for the loop to drain
// the tasks they queued. Pending debounce timers are not waited for.
func (p *Page) Settle() {
	p.inflight.Wait()
	p.Do(func(*dom.Document) {})
}

// Close stops the loop, cancels pending debounce checks and aborts
// outstanding requests. It must not be called from the loop itself.
func (p *Page) Close() {
	if p.closed.CompareAndSwap(false, true) {
		close(p.stopCh)
	}
	<-p.stopped
	p.cancel()
	for _, g := range p.gates {
		g.Cancel()
	}
}

// Closed reports whether Close has been called.
func (p *Page) Closed() bool { return p.closed.Load() }

// Plan returns the configuration built when the page was attached.
func (p *Page) Plan() *binding.Plan { return p.plan }

// Document returns the page's document. Only touch it through Do while the
// page is open.
func (p *Page) Document() *dom.Document { return p.doc }

// Gate returns the gated form for form, or nil. Loop only.
func (p *Page) Gate(form *dom.Element) *GatedForm { return p.gates[form.Key()] }

// Resolver returns the resolver for form, or nil. Loop only.
func (p *Page) Resolver(form *dom.Element) *Resolver { return p.resolvers[form.Key()] }

// Modal returns the confirmation modal state for el, or nil. Loop only.
func (p *Page) Modal(el *dom.Element) *Modal { return p.modals[el.Key()] }

func (p *Page) handle(ev *dom.Event) {
	deleted := map[any]bool{}
	for _, m := range p.eng.table.Match(ev) {
		switch m.Role {
		case binding.RoleTemplateSource:
			if r := p.resolverFor(m.Element.Form()); r != nil {
				r.Refresh(m.Element)
			}
		case binding.RoleTemplateForm:
			if r := p.resolverFor(m.Element); r != nil {
				r.RefreshAll()
			}
		case binding.RoleGateForm:
			g := p.gateFor(m.Element)
			if ev.Type == dom.EventChange {
				g.Cancel()
				g.Recompute()
			} else {
				g.Schedule()
			}
		case binding.RoleDeleteTrigger, binding.RoleDirectDelete:
			if deleted[m.Element.Key()] {
				continue
			}
			deleted[m.Element.Key()] = true
			p.deleteIntent(m)
		case binding.RoleConfirm:
			p.confirm(m.Element)
		case binding.RoleCancel:
			p.dismiss(m.Element)
		case binding.RoleLogout:
			p.logout()
		case binding.RoleShortcut:
			applyShortcut(m.Element, ev.Key)
		}
	}
}

// formFor plans a form inserted after attach.
func (p *Page) formFor(form *dom.Element) {
	if _, ok := p.gates[form.Key()]; ok {
		return
	}
	tf, gf := p.eng.table.PlanForm(form)
	if tf != nil {
		r := newResolver(*tf, p.eng.table.Markup())
		r.RefreshAll()
		p.resolvers[form.Key()] = r
	}
	g := newGatedForm(gf, p.eng.clock, p.eng.debounce, p.post)
	g.Recompute()
	p.gates[form.Key()] = g
	p.eng.logger.Debug("form planned late", slog.String("form", form.String()))
}

func (p *Page) resolverFor(form *dom.Element) *Resolver {
	if form == nil {
		return nil
	}
	p.formFor(form)
	return p.resolvers[form.Key()]
}

func (p *Page) gateFor(form *dom.Element) *GatedForm {
	p.formFor(form)
	return p.gates[form.Key()]
}

// modalFor returns the state of a confirmation modal, creating it for
// modals inserted after attach.
func (p *Page) modalFor(el *dom.Element) *Modal {
	if m, ok := p.modals[el.Key()]; ok {
		return m
	}
	cm := p.eng.table.ConfirmModalOf(el)
	m := newModal(el, cm.Confirms, p.eng.table.Markup().DeleteIDAttr)
	p.modals[el.Key()] = m
	return m
}

// request issues method path off the loop and hands the outcome to done,
// which also runs off the loop.
func (p *Page) request(method, path string, done func(Response, error)) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		resp, err := p.eng.requester.Do(p.ctx, method, path)
		done(resp, err)
	}()
}

// navigationContext outlives the page: navigating replaces it.
func (p *Page) navigationContext() context.Context {
	return context.WithoutCancel(p.ctx)
}
