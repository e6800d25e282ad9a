// Package dom is an in-memory document built from server-rendered HTML.
//
// It provides the parts of a browser document the console behaviours depend
// on: selector lookup, live form values, attribute mutation (including the
// hidden attribute) and event delivery through listeners registered on the
// document root.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML page.
//
// A Document is not safe for concurrent use. Callers serialise access, which
// the engine does by owning each document from a single event loop.
type Document struct {
	root *html.Node

	// values holds live form values that differ from the markup default,
	// the same split a browser makes between the value property and the
	// value attribute.
	values map[*html.Node]string

	listeners []listener
}

type listener struct {
	types map[string]struct{}
	fn    Listener
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{root: root, values: make(map[*html.Node]string)}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the <html> element, or nil for an empty document.
func (d *Document) Root() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Title returns the text of the <title> element.
func (d *Document) Title() string {
	n := findAtom(d.root, atom.Title)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(textContent(n))
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

// Query returns the first element matching s, or nil.
func (d *Document) Query(s Selector) *Element {
	return d.wrap(s.query(d.root))
}

// QueryAll returns every element matching s in document order.
func (d *Document) QueryAll(s Selector) []*Element {
	return d.wrapAll(s.queryAll(d.root))
}

// QuerySelector compiles raw and returns the first match.
func (d *Document) QuerySelector(raw string) (*Element, error) {
	s, err := Compile(raw)
	if err != nil {
		return nil, err
	}
	return d.Query(s), nil
}

// Render writes the current state of the document as HTML. Live values are
// written back into the markup so the output reflects what a user would see.
func (d *Document) Render(w io.Writer) error {
	for n, v := range d.values {
		switch n.DataAtom {
		case atom.Input:
			setAttr(n, "value", v)
		case atom.Textarea:
			setText(n, v)
		}
	}
	return html.Render(w, d.root)
}

// String renders the document, ignoring errors.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{node: n, doc: d}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == a {
			found = c
			return false
		}
		return true
	})
	return found
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func setText(n *html.Node, s string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
