package engine

import (
	"log/slog"

	"github.com/starford/warpboard/internal/binding"
	"github.com/starford/warpboard/internal/dom"
)

// deleteIntent handles a delete control. In confirm mode it opens every
// confirmation modal for the control's id; in direct mode it deletes.
func (p *Page) deleteIntent(m binding.Match) {
	markup := p.eng.table.Markup()
	attr := markup.DeleteTriggerAttr
	if m.Role == binding.RoleDirectDelete {
		attr = markup.DeleteIDAttr
	}
	id, _ := m.Element.Attr(attr)
	if id == "" {
		p.eng.logger.Debug("delete control without id", slog.String("control", m.Element.String()))
		return
	}

	switch p.plan.Mode {
	case binding.DeleteConfirm:
		for _, el := range p.eng.table.ConfirmModals(p.doc) {
			p.modalFor(el).Open(id)
		}
		p.eng.logger.Debug("delete pending confirmation", slog.String("id", id))
	default:
		p.delete(id)
	}
}

// confirm handles a confirm control inside a confirmation modal.
func (p *Page) confirm(control *dom.Element) {
	container := p.eng.table.ConfirmModal(control)
	if container == nil {
		return
	}
	modal := p.modalFor(container)
	id, ok := modal.begin(control)
	if !ok {
		p.eng.logger.Debug("confirm ignored",
			slog.String("state", modal.State().String()))
		return
	}
	p.delete(id)
}

// dismiss hides the modal enclosing a cancel control, and only that one.
func (p *Page) dismiss(control *dom.Element) {
	container := p.eng.table.Modal(control)
	if container == nil {
		return
	}
	container.SetHidden(true)

	cm := p.eng.table.ConfirmModal(control)
	if cm == nil || !p.eng.table.Modal(cm).Same(container) {
		return
	}
	if m, ok := p.modals[cm.Key()]; ok {
		m.Close()
	}
}

// delete issues the deletion request. A successful response reloads the
// page; anything else leaves the page as it is, including a confirmation
// modal stuck in completing.
func (p *Page) delete(id string) {
	path := p.eng.endpoints.deletePath(id)
	logger := p.eng.logger.With(slog.String("id", id), slog.String("path", path))

	p.request(methodDelete, path, func(resp Response, err error) {
		if err == nil && resp.OK() {
			logger.Info("alert deleted, reloading", slog.Int("status", resp.Status))
			if navErr := p.eng.navigator.Reload(p.navigationContext()); navErr != nil {
				logger.Warn("reload failed", slog.String("error", navErr.Error()))
			}
			return
		}

		attrs := []any{slog.Int("status", resp.Status)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		logger.Warn("delete failed", attrs...)
	})
}
