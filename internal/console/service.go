// Package console is the fixture server the interaction engine talks to.
// It serves pages from a directory and answers the logout and delete
// endpoints without storing any alerts.
package console

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/warpboard/internal/apperr"
	"github.com/starford/warpboard/internal/pages"
)

// Publisher receives the outcome of console actions.
type Publisher interface {
	PublishAlertDeleted(id string, ok bool)
	PublishSessionEnded()
}

// Action kinds recorded in the journal.
const (
	ActionDelete = "delete"
	ActionLogout = "logout"
)

// Action is one request the console handled.
type Action struct {
	Kind    string    `json:"kind"`
	AlertID string    `json:"alert_id,omitempty"`
	OK      bool      `json:"ok"`
	At      time.Time `json:"at"`
}

// Service answers console requests.
type Service struct {
	site   *pages.Site
	events Publisher
	logger *slog.Logger

	mu      sync.Mutex
	journal []Action
}

// NewService creates a service over site. events may be nil.
func NewService(site *pages.Site, events Publisher, logger *slog.Logger) *Service {
	return &Service{site: site, events: events, logger: logger}
}

// Page returns the page for route.
func (s *Service) Page(route string) (*pages.Page, error) {
	return s.site.Lookup(route)
}

// DeleteAlert pretends to delete alert id. It fails with
// apperr.ErrDeleteFailed when a page lists id under fail_delete.
func (s *Service) DeleteAlert(id string) error {
	ok := !s.site.FailsDelete(id)
	s.record(Action{Kind: ActionDelete, AlertID: id, OK: ok})
	if s.events != nil {
		s.events.PublishAlertDeleted(id, ok)
	}
	if !ok {
		s.logger.Info("alert delete refused", slog.String("alert_id", id))
		return fmt.Errorf("alert %s: %w", id, apperr.ErrDeleteFailed)
	}
	s.logger.Info("alert deleted", slog.String("alert_id", id))
	return nil
}

// Logout ends the session.
func (s *Service) Logout() {
	s.record(Action{Kind: ActionLogout, OK: true})
	if s.events != nil {
		s.events.PublishSessionEnded()
	}
	s.logger.Info("session ended")
}

// Journal returns every handled action in order.
func (s *Service) Journal() []Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Action(nil), s.journal...)
}

func (s *Service) record(a Action) {
	a.At = time.Now().UTC()
	s.mu.Lock()
	s.journal = append(s.journal, a)
	s.mu.Unlock()
}
