// Package script replays scripted user interactions against a browser
// session and checks the resulting page.
package script

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/warpboard/internal/apperr"
	pkgconfig "github.com/starford/warpboard/pkg/config"
)

// DefaultWithin bounds how long an expectation is retried.
const DefaultWithin = time.Second

// Script is a named sequence of steps.
type Script struct {
	Name  string `yaml:"name"`
	Open  string `yaml:"open"`
	Steps []Step `yaml:"steps"`
}

// Step is one action. Exactly one field is set.
type Step struct {
	Open   string        `yaml:"open,omitempty"`
	Click  string        `yaml:"click,omitempty"`
	Type   *TypeStep     `yaml:"type,omitempty"`
	Select *SelectStep   `yaml:"select,omitempty"`
	Key    *KeyStep      `yaml:"key,omitempty"`
	Submit string        `yaml:"submit,omitempty"`
	Wait   time.Duration `yaml:"wait,omitempty"`
	Expect *Expectation  `yaml:"expect,omitempty"`
}

// TypeStep types Text into a field one keystroke at a time. Commit fires
// a change event afterwards, as leaving the field would.
type TypeStep struct {
	Selector string `yaml:"selector"`
	Text     string `yaml:"text"`
	Clear    bool   `yaml:"clear"`
	Commit   bool   `yaml:"commit"`
}

// SelectStep picks an option and fires change.
type SelectStep struct {
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
}

// KeyStep presses a single key on an element.
type KeyStep struct {
	Selector string `yaml:"selector"`
	Key      string `yaml:"key"`
}

// Expectation checks the page. Selector-bound checks need Selector.
type Expectation struct {
	Selector string            `yaml:"selector,omitempty"`
	Missing  bool              `yaml:"missing,omitempty"`
	Hidden   *bool             `yaml:"hidden,omitempty"`
	Disabled *bool             `yaml:"disabled,omitempty"`
	Value    *string           `yaml:"value,omitempty"`
	Text     *string           `yaml:"text,omitempty"`
	Attr     map[string]string `yaml:"attr,omitempty"`
	URL      string            `yaml:"url,omitempty"`
	Title    string            `yaml:"title,omitempty"`
	Within   time.Duration     `yaml:"within,omitempty"`
}

func (e *Expectation) needsElement() bool {
	return e.Missing || e.Hidden != nil || e.Disabled != nil || e.Value != nil || e.Text != nil || len(e.Attr) > 0
}

// Action names the step's action.
func (s Step) Action() string {
	switch {
	case s.Open != "":
		return "open"
	case s.Click != "":
		return "click"
	case s.Type != nil:
		return "type"
	case s.Select != nil:
		return "select"
	case s.Key != nil:
		return "key"
	case s.Submit != "":
		return "submit"
	case s.Wait != 0:
		return "wait"
	case s.Expect != nil:
		return "expect"
	}
	return ""
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Open != "", s.Click != "", s.Type != nil, s.Select != nil,
		s.Key != nil, s.Submit != "", s.Wait != 0, s.Expect != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate checks that the step holds exactly one well-formed action.
func (s Step) Validate() error {
	if n := s.actions(); n != 1 {
		return fmt.Errorf("step must hold exactly one action, has %d", n)
	}
	switch {
	case s.Type != nil:
		return validation.ValidateStruct(s.Type,
			validation.Field(&s.Type.Selector, validation.Required))
	case s.Select != nil:
		return validation.ValidateStruct(s.Select,
			validation.Field(&s.Select.Selector, validation.Required))
	case s.Key != nil:
		return validation.ValidateStruct(s.Key,
			validation.Field(&s.Key.Selector, validation.Required),
			validation.Field(&s.Key.Key, validation.Required))
	case s.Wait != 0:
		if s.Wait < 0 {
			return errors.New("wait must be positive")
		}
	case s.Expect != nil:
		e := s.Expect
		if e.needsElement() && e.Selector == "" {
			return errors.New("expect: selector is required for element checks")
		}
		if !e.needsElement() && e.Selector == "" && e.URL == "" && e.Title == "" {
			return errors.New("expect: nothing to check")
		}
		if e.Within < 0 {
			return errors.New("expect: within must not be negative")
		}
	}
	return nil
}

// Validate checks the script.
func (s *Script) Validate() error {
	if err := validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		// Steps are checked below so errors name the step.
		validation.Field(&s.Steps, validation.Required, validation.Skip),
	); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidScript, err)
	}
	for i, st := range s.Steps {
		if err := st.Validate(); err != nil {
			return fmt.Errorf("%w: step %d: %w", apperr.ErrInvalidScript, i+1, err)
		}
	}
	return nil
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	var s Script
	if err := pkgconfig.Load(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := pkgconfig.Decode(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
