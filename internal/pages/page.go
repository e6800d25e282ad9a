package pages

import (
	"bytes"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/warpboard/internal/dom"
)

// Page is a parsed page file.
type Page struct {
	Path       string
	Route      string
	Title      string
	FailDelete []string
	Body       []byte
	Checksum   string
}

// FailsDelete reports whether deleting alert id should fail while this
// page is served.
func (p *Page) FailsDelete(id string) bool {
	for _, f := range p.FailDelete {
		if f == id || f == "*" {
			return true
		}
	}
	return false
}

type frontmatter struct {
	Route      string   `yaml:"route"`
	Title      string   `yaml:"title"`
	FailDelete []string `yaml:"fail_delete"`
}

// Parse splits the optional YAML frontmatter from the HTML body of the
// page file at rel. Invalid frontmatter is served as part of the body.
func Parse(rel string, data []byte) *Page {
	fm, body := splitFrontmatter(data)
	p := &Page{
		Path:       rel,
		Route:      fm.Route,
		Title:      fm.Title,
		FailDelete: fm.FailDelete,
		Body:       body,
		Checksum:   checksum(data),
	}
	if p.Route == "" {
		p.Route = RouteOf(rel)
	}
	if p.Title == "" {
		if doc, err := dom.Parse(bytes.NewReader(body)); err == nil {
			p.Title = doc.Title()
		}
	}
	return p
}

// RouteOf derives the route a page file answers on: index.html is its
// directory, anything else drops the extension.
func RouteOf(rel string) string {
	rel = "/" + strings.TrimPrefix(path.Clean("/"+rel), "/")
	rel = strings.TrimSuffix(rel, Ext)
	if path.Base(rel) == "index" {
		rel = path.Dir(rel)
	}
	return rel
}

func splitFrontmatter(data []byte) (frontmatter, []byte) {
	const delim = "---"
	var fm frontmatter

	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, data
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, data
	}
	block := rest[:idx]
	body := bytes.TrimLeft(rest[idx+1+len(delim):], "\n\r")

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return frontmatter{}, data
	}
	return fm, body
}
