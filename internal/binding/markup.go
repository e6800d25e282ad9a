// Package binding maps page markup to console behaviours.
//
// Markup names the attributes and selectors a page uses. Compile turns it into
// a Table of role rules used for event dispatch, and Scan walks a document
// once to build the explicit per-form and per-modal configuration in a Plan.
package binding

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/warpboard/internal/dom"
)

// Placeholder token styles.
const (
	// TokenBrace matches {name} and its percent-encoded form %7Bname%7D.
	TokenBrace = "brace"
	// TokenColon matches :name when not followed by another name character.
	TokenColon = "colon"
)

// Markup is the attribute schema a console page is written against.
type Markup struct {
	// TemplateAttr flags a form whose action is a template, and on the
	// form's fields names the placeholder the field supplies.
	TemplateAttr string `yaml:"template_attr"`
	TokenStyle   string `yaml:"token_style"`

	// DeleteTriggerAttr carries the alert id on a control that starts a
	// deletion (confirmed or direct, depending on the page).
	DeleteTriggerAttr string `yaml:"delete_trigger_attr"`
	// DeleteIDAttr carries the alert id on confirm controls, and on
	// controls that delete directly when the page has no confirmation modal.
	DeleteIDAttr string `yaml:"delete_id_attr"`

	ModalSelector    string `yaml:"modal_selector"`
	ConfirmModalAttr string `yaml:"confirm_modal_attr"`
	ConfirmAttr      string `yaml:"confirm_attr"`
	CancelAttr       string `yaml:"cancel_attr"`

	LogoutSelector string `yaml:"logout_selector"`
	// ShortcutSelector is optional; empty disables the direction shortcuts.
	ShortcutSelector string `yaml:"shortcut_selector"`
}

// DefaultMarkup returns the schema used by the alert console templates.
func DefaultMarkup() Markup {
	return Markup{
		TemplateAttr:      "data-format-action",
		TokenStyle:        TokenBrace,
		DeleteTriggerAttr: "data-try-delete-id",
		DeleteIDAttr:      "data-delete-id",
		ModalSelector:     ".modal",
		ConfirmModalAttr:  "data-confirm-delete-modal",
		ConfirmAttr:       "data-confirm",
		CancelAttr:        "data-cancel",
		LogoutSelector:    "#logout",
		ShortcutSelector:  "[name='direction']",
	}
}

// Validate validates the markup schema.
func (m *Markup) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.TemplateAttr, validation.Required),
		validation.Field(&m.TokenStyle, validation.Required, validation.In(TokenBrace, TokenColon)),
		validation.Field(&m.DeleteTriggerAttr, validation.Required),
		validation.Field(&m.DeleteIDAttr, validation.Required),
		validation.Field(&m.ModalSelector, validation.Required, validation.By(validSelector)),
		validation.Field(&m.ConfirmModalAttr, validation.Required),
		validation.Field(&m.ConfirmAttr, validation.Required),
		validation.Field(&m.CancelAttr, validation.Required),
		validation.Field(&m.LogoutSelector, validation.Required, validation.By(validSelector)),
		validation.Field(&m.ShortcutSelector, validation.By(validSelector)),
	)
}

func validSelector(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := dom.Compile(s); err != nil {
		return fmt.Errorf("invalid selector")
	}
	return nil
}

// selectors is the compiled form of a Markup.
type selectors struct {
	templateForm   dom.Selector
	templateSource dom.Selector
	gateForm       dom.Selector
	required       dom.Selector
	submit         dom.Selector
	deleteTrigger  dom.Selector
	directDelete   dom.Selector
	modal          dom.Selector
	confirmModal   dom.Selector
	confirm        dom.Selector
	confirmControl dom.Selector
	cancel         dom.Selector
	logout         dom.Selector
	shortcut       dom.Selector
}

func (m Markup) compile() (*selectors, error) {
	raw := map[*dom.Selector]string{}
	s := &selectors{}
	raw[&s.templateForm] = fmt.Sprintf("form[%s]", m.TemplateAttr)
	raw[&s.templateSource] = fmt.Sprintf("form[%s] [%s]", m.TemplateAttr, m.TemplateAttr)
	raw[&s.gateForm] = "form"
	raw[&s.required] = "input[required], select[required], textarea[required]"
	raw[&s.submit] = "button:not([type]), button[type=submit], input[type=submit], input[type=image]"
	raw[&s.deleteTrigger] = fmt.Sprintf("[%s]", m.DeleteTriggerAttr)
	raw[&s.directDelete] = fmt.Sprintf("[%s]:not([%s])", m.DeleteIDAttr, m.ConfirmAttr)
	raw[&s.modal] = m.ModalSelector
	raw[&s.confirmModal] = fmt.Sprintf("[%s]", m.ConfirmModalAttr)
	raw[&s.confirm] = fmt.Sprintf("[%s] [%s]", m.ConfirmModalAttr, m.ConfirmAttr)
	raw[&s.confirmControl] = fmt.Sprintf("[%s]", m.ConfirmAttr)
	raw[&s.cancel] = fmt.Sprintf("%s [%s]", m.ModalSelector, m.CancelAttr)
	raw[&s.logout] = m.LogoutSelector
	if m.ShortcutSelector != "" {
		raw[&s.shortcut] = m.ShortcutSelector
	}

	for dst, src := range raw {
		sel, err := dom.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("binding: %w", err)
		}
		*dst = sel
	}
	return s, nil
}
