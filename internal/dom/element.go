package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle to an element node of a Document. Two handles are the
// same element when Same reports true; handles themselves are not unique.
type Element struct {
	node *html.Node
	doc  *Document
}

// Same reports whether e and other refer to the same node.
func (e *Element) Same(other *Element) bool {
	if e == nil || other == nil {
		return e == nil && other == nil
	}
	return e.node == other.node
}

// Key identifies the underlying node, for use as a map key.
func (e *Element) Key() any { return e.node }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// ID returns the id attribute.
func (e *Element) ID() string { return attr(e.node, "id") }

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) { return lookupAttr(e.node, key) }

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := lookupAttr(e.node, key)
	return ok
}

// SetAttr sets an attribute, adding it if missing.
func (e *Element) SetAttr(key, val string) { setAttr(e.node, key, val) }

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(key string) { removeAttr(e.node, key) }

// Hidden reports whether the hidden attribute is present.
func (e *Element) Hidden() bool { return e.HasAttr("hidden") }

// SetHidden adds or removes the hidden attribute.
func (e *Element) SetHidden(hidden bool) {
	if hidden {
		e.SetAttr("hidden", "")
		return
	}
	e.RemoveAttr("hidden")
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool { return e.HasAttr("disabled") }

// SetDisabled adds or removes the disabled attribute.
func (e *Element) SetDisabled(disabled bool) {
	if disabled {
		e.SetAttr("disabled", "")
		return
	}
	e.RemoveAttr("disabled")
}

// Required reports whether the required attribute is present.
func (e *Element) Required() bool { return e.HasAttr("required") }

// Text returns the concatenated text content.
func (e *Element) Text() string { return textContent(e.node) }

// Parent returns the parent element, or nil at the root.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Matches reports whether e matches s.
func (e *Element) Matches(s Selector) bool { return s.match(e.node) }

// Closest returns e or its nearest ancestor matching s.
func (e *Element) Closest(s Selector) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if s.match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Query returns the first descendant matching s.
func (e *Element) Query(s Selector) *Element { return e.doc.wrap(s.query(e.node)) }

// QueryAll returns the descendants matching s in document order.
func (e *Element) QueryAll(s Selector) []*Element { return e.doc.wrapAll(s.queryAll(e.node)) }

// Form returns the enclosing form element, or nil.
func (e *Element) Form() *Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.DataAtom == atom.Form {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Value returns the current value of a form control.
//
// Inputs report their live value, falling back to the value attribute.
// Selects report the value of the selected option, or of the first option
// when none is marked selected. Textareas report their text.
func (e *Element) Value() string {
	if v, ok := e.doc.values[e.node]; ok {
		return v
	}
	switch e.node.DataAtom {
	case atom.Select:
		if opt := e.selectedOption(); opt != nil {
			return optionValue(opt)
		}
		return ""
	case atom.Textarea:
		return textContent(e.node)
	case atom.Option:
		return optionValue(e.node)
	case atom.Input:
		if v, ok := lookupAttr(e.node, "value"); ok {
			return v
		}
		switch strings.ToLower(attr(e.node, "type")) {
		case "checkbox", "radio":
			return "on"
		}
		return ""
	}
	return attr(e.node, "value")
}

// SetValue sets the live value of a form control. Setting a select to a
// value no option carries leaves it with no selection and an empty value.
func (e *Element) SetValue(v string) {
	if e.node.DataAtom != atom.Select {
		e.doc.values[e.node] = v
		return
	}
	var match *html.Node
	for _, opt := range e.options() {
		removeAttr(opt, "selected")
		if match == nil && optionValue(opt) == v {
			match = opt
		}
	}
	if match == nil {
		e.doc.values[e.node] = ""
		return
	}
	setAttr(match, "selected", "")
	delete(e.doc.values, e.node)
}

// AppendHTML parses fragment in the context of e and appends the result as
// children of e.
func (e *Element) AppendHTML(fragment string) error {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), e.node)
	if err != nil {
		return fmt.Errorf("dom: parse fragment: %w", err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// OuterHTML renders e and its descendants.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}

// String describes e as tag#id.class[attr], for logs.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	sb.WriteString(e.node.Data)
	if id := e.ID(); id != "" {
		sb.WriteString("#" + id)
	}
	if name := attr(e.node, "name"); name != "" {
		fmt.Fprintf(&sb, "[name=%q]", name)
	}
	return sb.String()
}

func (e *Element) options() []*html.Node {
	var out []*html.Node
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Option {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (e *Element) selectedOption() *html.Node {
	opts := e.options()
	for _, opt := range opts {
		if _, ok := lookupAttr(opt, "selected"); ok {
			return opt
		}
	}
	if len(opts) > 0 && !e.HasAttr("multiple") {
		return opts[0]
	}
	return nil
}

func optionValue(n *html.Node) string {
	if v, ok := lookupAttr(n, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(n))
}
