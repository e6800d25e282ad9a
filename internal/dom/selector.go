package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector group.
type Selector struct {
	raw   string
	group cascadia.SelectorGroup
}

// Compile parses a CSS selector group such as ".modal [data-cancel]".
func Compile(raw string) (Selector, error) {
	group, err := cascadia.ParseGroup(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("dom: compile selector %q: %w", raw, err)
	}
	return Selector{raw: raw, group: group}, nil
}

// MustCompile is like Compile but panics on an invalid selector.
func MustCompile(raw string) Selector {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the source text of the selector.
func (s Selector) String() string { return s.raw }

// IsZero reports whether the selector was never compiled.
func (s Selector) IsZero() bool { return s.group == nil }

func (s Selector) match(n *html.Node) bool {
	if s.group == nil || n == nil || n.Type != html.ElementNode {
		return false
	}
	return s.group.Match(n)
}

func (s Selector) queryAll(n *html.Node) []*html.Node {
	if s.group == nil {
		return nil
	}
	return cascadia.QueryAll(n, s.group)
}

func (s Selector) query(n *html.Node) *html.Node {
	if s.group == nil {
		return nil
	}
	return cascadia.Query(n, s.group)
}
