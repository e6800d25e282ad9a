package engine

import (
	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/dom"
)

// Resolver keeps a form's action in sync with its placeholder sources.
type Resolver struct {
	form    *dom.Element
	tmpl    *ActionTemplate
	sources []binding.Source
	attr    string
}

func newResolver(tf binding.TemplateForm, markup binding.Markup) *Resolver {
	return &Resolver{
		form:    tf.Form,
		tmpl:    NewActionTemplate(tf.Template, markup.TokenStyle),
		sources: tf.Sources,
		attr:    markup.TemplateAttr,
	}
}

// Template returns the form's action template.
func (r *Resolver) Template() *ActionTemplate { return r.tmpl }

// RefreshAll reads every source and rewrites the action.
func (r *Resolver) RefreshAll() {
	for _, src := range r.sources {
		r.tmpl.Set(src.Name, src.Element.Value())
	}
	r.apply()
}

// Refresh reads the source el and rewrites the action. A source that was
// inserted after the form was planned is adopted on its first event.
func (r *Resolver) Refresh(el *dom.Element) {
	found := false
	for _, src := range r.sources {
		if src.Element.Same(el) {
			r.tmpl.Set(src.Name, el.Value())
			found = true
		}
	}
	if !found {
		name, _ := el.Attr(r.attr)
		if name == "" {
			return
		}
		r.sources = append(r.sources, binding.Source{Name: name, Element: el})
		r.tmpl.Set(name, el.Value())
	}
	r.apply()
}

func (r *Resolver) apply() {
	r.form.SetAttr("action", r.tmpl.Resolve())
}
