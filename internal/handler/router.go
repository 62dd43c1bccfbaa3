package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount registers the API routes on r. limits wrap every route except the
// event stream, which stays open as long as the client watches the session.
func Mount(r chi.Router, diagrams *DiagramHandler, sessions *SessionHandler, health *HealthHandler, limits ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(limits...)

		r.Get("/healthz", health.Health)

		r.Post("/api/v1/diagrams", diagrams.Convert)

		r.Post("/api/v1/sessions", sessions.Create)
		r.Get("/api/v1/sessions/{id}", sessions.Get)
		r.Post("/api/v1/sessions/{id}/upload", sessions.Upload)
		r.Get("/api/v1/sessions/{id}/download", sessions.Download)
		r.Get("/api/v1/sessions/{id}/summary.docx", sessions.SummaryDocx)
		r.Post("/api/v1/sessions/{id}/reset", sessions.Reset)
	})

	r.Get("/api/v1/sessions/{id}/events", sessions.Events)
}
