package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/starford/warpboard/internal/binding"
)

var braceTokenRe = regexp.MustCompile(`\{([^{}/?#]+)\}|%7[Bb](.+?)%7[Dd]`)

// ActionTemplate is a form action with named placeholders.
//
// Resolve always starts from the original template and replaces every token
// in a single pass, so a substituted value is never scanned for tokens and
// one placeholder cannot disturb the segment of another. Tokens whose name has
// no value yet are left as they are.
//
// Colon tokens are matched against the known names, longest first, and only
// where no further name character follows, so :id never eats :identifier.
type ActionTemplate struct {
	raw    string
	colon  bool
	re     *regexp.Regexp
	values map[string]string
}

// NewActionTemplate returns a template for raw using the given token style.
func NewActionTemplate(raw, style string) *ActionTemplate {
	t := &ActionTemplate{raw: raw, values: make(map[string]string)}
	if style == binding.TokenColon {
		t.colon = true
	} else {
		t.re = braceTokenRe
	}
	return t
}

// Raw returns the template as captured.
func (t *ActionTemplate) Raw() string { return t.raw }

// Set records the latest value for name.
func (t *ActionTemplate) Set(name, value string) {
	if _, known := t.values[name]; !known && t.colon {
		t.re = nil
	}
	t.values[name] = value
}

// Value returns the latest value recorded for name.
func (t *ActionTemplate) Value(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Resolve returns the template with every known token replaced.
func (t *ActionTemplate) Resolve() string {
	if t.colon {
		return t.resolveColon()
	}
	return t.re.ReplaceAllStringFunc(t.raw, func(token string) string {
		m := t.re.FindStringSubmatch(token)
		name := m[1]
		if name == "" && len(m) > 2 {
			name = m[2]
		}
		if v, ok := t.values[name]; ok {
			return v
		}
		return token
	})
}

func (t *ActionTemplate) resolveColon() string {
	if len(t.values) == 0 {
		return t.raw
	}
	if t.re == nil {
		t.re = colonPattern(t.values)
	}
	var b strings.Builder
	last := 0
	for _, m := range t.re.FindAllStringSubmatchIndex(t.raw, -1) {
		end := m[1]
		if end < len(t.raw) && isNameByte(t.raw[end]) {
			continue
		}
		b.WriteString(t.raw[last:m[0]])
		b.WriteString(t.values[t.raw[m[2]:m[3]]])
		last = end
	}
	b.WriteString(t.raw[last:])
	return b.String()
}

// colonPattern matches :name for every known name, longest names first.
func colonPattern(values map[string]string) *regexp.Regexp {
	names := make([]string, 0, len(values))
	for name := range values {
		if name != "" {
			names = append(names, regexp.QuoteMeta(name))
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	if len(names) == 0 {
		return regexp.MustCompile(`$^`)
	}
	return regexp.MustCompile(`:(` + strings.Join(names, "|") + `)`)
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
