package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/warpboard/internal/apperr"
)

const sampleScript = `
name: create alert
open: /alerts
steps:
  - type: {selector: "input[name=price]", text: "42"}
  - wait: 150ms
  - expect: {selector: "#save", disabled: false}
  - click: "#del42"
  - expect: {url: /alerts, within: 2s}
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleScript))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "create alert" || s.Open != "/alerts" || len(s.Steps) != 5 {
		t.Fatalf("script = %+v", s)
	}
	if s.Steps[1].Wait != 150*time.Millisecond {
		t.Errorf("wait = %v", s.Steps[1].Wait)
	}
	if s.Steps[4].Expect.Within != 2*time.Second {
		t.Errorf("within = %v", s.Steps[4].Expect.Within)
	}
	var actions []string
	for _, st := range s.Steps {
		actions = append(actions, st.Action())
	}
	want := []string{"type", "wait", "expect", "click", "expect"}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("actions = %v, want %v", actions, want)
			break
		}
	}
}

func TestParseRejectsInvalidScripts(t *testing.T) {
	tests := map[string]string{
		"no name":         "steps:\n  - click: a\n",
		"no steps":        "name: x\n",
		"two actions":     "name: x\nsteps:\n  - click: a\n    submit: form\n",
		"empty step":      "name: x\nsteps:\n  - {}\n",
		"key without key": "name: x\nsteps:\n  - key: {selector: select}\n",
		"bare expect":     "name: x\nsteps:\n  - expect: {within: 1s}\n",
		"value no target": "name: x\nsteps:\n  - expect: {value: a}\n",
		"negative wait":   "name: x\nsteps:\n  - wait: -1s\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); !errors.Is(err, apperr.ErrInvalidScript) {
				t.Errorf("err = %v, want ErrInvalidScript", err)
			}
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	if _, err := Parse([]byte("name: x\nsteps:\n  - clik: a\n")); err == nil {
		t.Error("expected error for unknown step field")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(sampleScript), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "create alert" {
		t.Errorf("name = %q", s.Name)
	}
}
