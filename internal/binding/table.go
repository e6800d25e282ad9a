package binding

import (
	"github.com/starford/warpboard/internal/dom"
)

// Role is the behaviour an element takes part in.
type Role string

// Roles dispatched by the engine.
const (
	RoleTemplateSource Role = "template-source"
	RoleTemplateForm   Role = "template-form"
	RoleGateForm       Role = "gate-form"
	RoleDeleteTrigger  Role = "delete-trigger"
	RoleDirectDelete   Role = "direct-delete"
	RoleConfirm        Role = "confirm"
	RoleCancel         Role = "cancel"
	RoleLogout         Role = "logout"
	RoleShortcut       Role = "shortcut"
)

// Rule binds a selector to a role for a set of event types.
type Rule struct {
	Role     Role
	Events   []string
	Selector dom.Selector
}

// Match is an element on an event's path that carries a role.
type Match struct {
	Role    Role
	Element *dom.Element
}

// Table is the ordered set of rules for one markup schema.
type Table struct {
	markup Markup
	sel    *selectors
	rules  []Rule
}

// Compile validates m and builds its dispatch table.
func Compile(m Markup) (*Table, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	sel, err := m.compile()
	if err != nil {
		return nil, err
	}

	rules := []Rule{
		{Role: RoleTemplateSource, Events: []string{dom.EventChange, dom.EventClick}, Selector: sel.templateSource},
		{Role: RoleTemplateForm, Events: []string{dom.EventSubmit}, Selector: sel.templateForm},
		{Role: RoleGateForm, Events: []string{dom.EventChange, dom.EventInput, dom.EventKeyUp}, Selector: sel.gateForm},
		{Role: RoleDeleteTrigger, Events: []string{dom.EventClick}, Selector: sel.deleteTrigger},
		{Role: RoleDirectDelete, Events: []string{dom.EventClick}, Selector: sel.directDelete},
		{Role: RoleConfirm, Events: []string{dom.EventClick}, Selector: sel.confirm},
		{Role: RoleCancel, Events: []string{dom.EventClick}, Selector: sel.cancel},
		{Role: RoleLogout, Events: []string{dom.EventClick}, Selector: sel.logout},
	}
	if !sel.shortcut.IsZero() {
		rules = append(rules, Rule{Role: RoleShortcut, Events: []string{dom.EventKeyDown}, Selector: sel.shortcut})
	}

	return &Table{markup: m, sel: sel, rules: rules}, nil
}

// Markup returns the schema the table was compiled from.
func (t *Table) Markup() Markup { return t.markup }

// Rules returns the rules in dispatch order.
func (t *Table) Rules() []Rule { return t.rules }

// EventTypes returns every event type some rule listens for.
func (t *Table) EventTypes() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range t.rules {
		for _, ev := range r.Events {
			if !seen[ev] {
				seen[ev] = true
				out = append(out, ev)
			}
		}
	}
	return out
}

// Match returns the role-carrying elements on ev's path, nearest first. For
// each element the rules are checked in table order.
func (t *Table) Match(ev *dom.Event) []Match {
	var out []Match
	for _, el := range ev.Path() {
		for _, r := range t.rules {
			if !listensFor(r, ev.Type) || !el.Matches(r.Selector) {
				continue
			}
			out = append(out, Match{Role: r.Role, Element: el})
		}
	}
	return out
}

func listensFor(r Rule, eventType string) bool {
	for _, ev := range r.Events {
		if ev == eventType {
			return true
		}
	}
	return false
}
