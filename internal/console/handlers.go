package console

import (
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/starford/warpboard/internal/apperr"
)

// Handler holds the console route handlers.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates a new Handler logging through the service's logger.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, logger: svc.logger}
}

// ServePage handles GET for every page route.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	route := path.Clean("/" + r.URL.Path)
	p, err := h.svc.Page(route)
	if errors.Is(err, apperr.ErrNotFound) {
		h.logger.Debug("page not found", slog.String("route", route))
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("page lookup failed", slog.String("route", route), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", `"`+p.Checksum+`"`)
	if r.Header.Get("If-None-Match") == `"`+p.Checksum+`"` {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(p.Body)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.svc.Logout()
	clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAlert handles DELETE /alert/{id}.
func (h *Handler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("alert id is required"))
		return
	}
	if err := h.svc.DeleteAlert(id); err != nil {
		if errors.Is(err, apperr.ErrDeleteFailed) {
			writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Journal handles GET /journal.
func (h *Handler) Journal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": h.svc.Journal()})
}
