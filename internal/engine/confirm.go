package engine

import (
	"github.com/starford/warpboard/internal/dom"
)

// ModalState is the state of a confirmation modal.
type ModalState int

// Modal states.
const (
	// ModalIdle: hidden, no target.
	ModalIdle ModalState = iota
	// ModalPending: visible, waiting for confirm or cancel.
	ModalPending
	// ModalCompleting: the deletion request has been issued. A failed
	// request leaves the modal here.
	ModalCompleting
)

func (s ModalState) String() string {
	switch s {
	case ModalIdle:
		return "idle"
	case ModalPending:
		return "pending"
	case ModalCompleting:
		return "completing"
	}
	return "unknown"
}

// Modal is one confirmation modal. Open and Close are its entry points;
// begin is called by the page when a confirm control is activated.
type Modal struct {
	el       *dom.Element
	confirms []*dom.Element
	idAttr   string

	state  ModalState
	target string
}

func newModal(el *dom.Element, confirms []*dom.Element, idAttr string) *Modal {
	return &Modal{el: el, confirms: confirms, idAttr: idAttr}
}

// State returns the current state.
func (m *Modal) State() ModalState { return m.state }

// Target returns the id of the alert awaiting confirmation.
func (m *Modal) Target() string { return m.target }

// Element returns the modal container.
func (m *Modal) Element() *dom.Element { return m.el }

// Open writes id onto every confirm control, shows the modal and moves it
// to pending.
func (m *Modal) Open(id string) {
	for _, c := range m.confirms {
		c.SetAttr(m.idAttr, id)
	}
	m.target = id
	m.state = ModalPending
	m.el.SetHidden(false)
}

// Close hides the modal and returns it to idle.
func (m *Modal) Close() {
	m.el.SetHidden(true)
	m.state = ModalIdle
	m.target = ""
}

// begin moves a pending modal to completing and returns the id to delete.
// The id carried by the activated control wins over the recorded target.
func (m *Modal) begin(control *dom.Element) (string, bool) {
	if m.state != ModalPending {
		return "", false
	}
	id, _ := control.Attr(m.idAttr)
	if id == "" {
		id = m.target
	}
	if id == "" {
		return "", false
	}
	m.state = ModalCompleting
	return id, true
}
