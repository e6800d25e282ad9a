package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with the console routes. events, if
// non-nil, is mounted at GET /events.
func NewRouter(svc *Service, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(SessionMiddleware)

	r.Post("/logout", h.Logout)
	r.Delete("/alert/{id}", h.DeleteAlert)
	r.Get("/journal", h.Journal)
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}
	r.Get("/*", h.ServePage)

	return r
}
