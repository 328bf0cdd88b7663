package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.metrics.Middleware)
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Get("/{id}", h.GetNote)
		r.Patch("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
		r.Post("/{id}/done", h.CompleteTask)
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", h.ListContacts)
		r.Post("/", h.CreateContact)
		r.Get("/{key}", h.GetContact)
		r.Patch("/{key}", h.UpdateContact)
		r.Delete("/{key}", h.DeleteContact)
	})

	r.Route("/finance", func(r chi.Router) {
		r.Get("/", h.ListFinance)
		r.Post("/", h.CreateFinance)
		r.Get("/report", h.FinanceReport)
		r.Get("/balance", h.FinanceBalance)
		r.Get("/{id}", h.GetFinance)
		r.Patch("/{id}", h.UpdateFinance)
		r.Delete("/{id}", h.DeleteFinance)
	})

	r.Post("/calc", h.Calculate)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
