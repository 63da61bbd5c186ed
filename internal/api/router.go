package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc NoteService, year func() int, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, year)

	r := chi.NewRouter()
	r.Use(LimitBody(maxBodyBytes))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/topics", h.Topics)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
