package binding

import "github.com/starford/warpboard/internal/dom"

// Summary is a serialisable view of a Plan.
type Summary struct {
	Mode          DeleteMode        `yaml:"delete_mode" json:"delete_mode"`
	TemplateForms []TemplateSummary `yaml:"template_forms,omitempty" json:"template_forms,omitempty"`
	GatedForms    []GateSummary     `yaml:"gated_forms,omitempty" json:"gated_forms,omitempty"`
	Modals        []ModalSummary    `yaml:"modals,omitempty" json:"modals,omitempty"`
	DeleteCount   int               `yaml:"delete_controls" json:"delete_controls"`
	Logout        bool              `yaml:"logout" json:"logout"`
	Shortcuts     []string          `yaml:"shortcuts,omitempty" json:"shortcuts,omitempty"`
}

// TemplateSummary describes a template form.
type TemplateSummary struct {
	Form     string            `yaml:"form" json:"form"`
	Template string            `yaml:"template" json:"template"`
	Sources  map[string]string `yaml:"sources" json:"sources"`
}

// GateSummary describes a gated form.
type GateSummary struct {
	Form     string   `yaml:"form" json:"form"`
	Required []string `yaml:"required,omitempty" json:"required,omitempty"`
	Submits  int      `yaml:"submits" json:"submits"`
}

// ModalSummary describes a confirmation modal.
type ModalSummary struct {
	Modal    string `yaml:"modal" json:"modal"`
	Hidden   bool   `yaml:"hidden" json:"hidden"`
	Confirms int    `yaml:"confirms" json:"confirms"`
}

// Summary returns a serialisable view of p.
func (p *Plan) Summary() Summary {
	s := Summary{
		Mode:        p.Mode,
		DeleteCount: len(p.DeleteControls),
		Logout:      p.Logout != nil,
		Shortcuts:   describe(p.Shortcuts),
	}
	for _, tf := range p.TemplateForms {
		sources := make(map[string]string, len(tf.Sources))
		for _, src := range tf.Sources {
			sources[src.Name] = src.Element.String()
		}
		s.TemplateForms = append(s.TemplateForms, TemplateSummary{
			Form:     tf.Form.String(),
			Template: tf.Template,
			Sources:  sources,
		})
	}
	for _, gf := range p.GatedForms {
		s.GatedForms = append(s.GatedForms, GateSummary{
			Form:     gf.Form.String(),
			Required: describe(gf.Required),
			Submits:  len(gf.Submits),
		})
	}
	for _, m := range p.Modals {
		s.Modals = append(s.Modals, ModalSummary{
			Modal:    m.Element.String(),
			Hidden:   m.Element.Hidden(),
			Confirms: len(m.Confirms),
		})
	}
	return s
}

func describe(els []*dom.Element) []string {
	if len(els) == 0 {
		return nil
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.String())
	}
	return out
}
