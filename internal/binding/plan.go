package binding

import (
	"github.com/starford/warpboard/internal/dom"
)

// DeleteMode selects how delete controls behave on a page.
type DeleteMode string

// Delete modes. A page is in exactly one mode, decided when it is scanned.
const (
	DeleteNone    DeleteMode = "none"
	DeleteDirect  DeleteMode = "direct"
	DeleteConfirm DeleteMode = "confirm"
)

// Source is a field that supplies one placeholder value.
type Source struct {
	Name    string
	Element *dom.Element
}

// TemplateForm is a form whose action is rebuilt from its sources.
type TemplateForm struct {
	Form     *dom.Element
	Template string
	Sources  []Source
}

// GatedForm is a form whose submit controls follow required-field completeness.
type GatedForm struct {
	Form     *dom.Element
	Required []*dom.Element
	Submits  []*dom.Element
}

// ConfirmModal is a confirmation modal and the confirm controls inside it.
type ConfirmModal struct {
	Element  *dom.Element
	Confirms []*dom.Element
}

// Plan is the configuration of one page, built once by Scan.
type Plan struct {
	Mode           DeleteMode
	TemplateForms  []TemplateForm
	GatedForms     []GatedForm
	Modals         []ConfirmModal
	DeleteControls []*dom.Element
	Logout         *dom.Element
	Shortcuts      []*dom.Element
}

// Scan walks doc and builds its plan.
//
// A page that carries any confirmation modal is in confirm mode, even if it
// also has controls marked for direct deletion; those then open the modal.
// Without a modal, delete controls delete directly.
func (t *Table) Scan(doc *dom.Document) *Plan {
	p := &Plan{Mode: DeleteNone}

	for _, form := range doc.QueryAll(t.sel.gateForm) {
		tf, gf := t.PlanForm(form)
		if tf != nil {
			p.TemplateForms = append(p.TemplateForms, *tf)
		}
		p.GatedForms = append(p.GatedForms, gf)
	}

	for _, modal := range t.ConfirmModals(doc) {
		p.Modals = append(p.Modals, t.ConfirmModalOf(modal))
	}

	p.DeleteControls = append(p.DeleteControls, doc.QueryAll(t.sel.deleteTrigger)...)
	p.DeleteControls = append(p.DeleteControls, doc.QueryAll(t.sel.directDelete)...)

	switch {
	case len(p.Modals) > 0:
		p.Mode = DeleteConfirm
	case len(p.DeleteControls) > 0:
		p.Mode = DeleteDirect
	}

	p.Logout = doc.Query(t.sel.logout)
	if !t.sel.shortcut.IsZero() {
		p.Shortcuts = doc.QueryAll(t.sel.shortcut)
	}
	return p
}

// PlanForm builds the configuration of a single form. The template part is
// nil unless the form is flagged as a template form.
func (t *Table) PlanForm(form *dom.Element) (*TemplateForm, GatedForm) {
	gf := GatedForm{
		Form:     form,
		Required: form.QueryAll(t.sel.required),
		Submits:  form.QueryAll(t.sel.submit),
	}

	if !form.Matches(t.sel.templateForm) {
		return nil, gf
	}
	action, _ := form.Attr("action")
	tf := &TemplateForm{Form: form, Template: action}
	for _, el := range form.QueryAll(t.sel.templateSource) {
		name, _ := el.Attr(t.markup.TemplateAttr)
		if name == "" {
			continue
		}
		tf.Sources = append(tf.Sources, Source{Name: name, Element: el})
	}
	return tf, gf
}

// Modal returns the nearest modal container enclosing el, or nil.
func (t *Table) Modal(el *dom.Element) *dom.Element {
	return el.Closest(t.sel.modal)
}

// ConfirmModal returns the confirmation modal enclosing el, or nil.
func (t *Table) ConfirmModal(el *dom.Element) *dom.Element {
	return el.Closest(t.sel.confirmModal)
}

// ConfirmModals returns every confirmation modal container in doc.
func (t *Table) ConfirmModals(doc *dom.Document) []*dom.Element {
	return doc.QueryAll(t.sel.confirmModal)
}

// ConfirmModalOf describes the confirmation modal container el.
func (t *Table) ConfirmModalOf(el *dom.Element) ConfirmModal {
	return ConfirmModal{Element: el, Confirms: el.QueryAll(t.sel.confirmControl)}
}
