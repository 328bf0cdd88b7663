package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/workspace"
)

// EventPublisher receives record change notifications.
type EventPublisher interface {
	PublishRecordEvent(kind, domain, key string)
}

// Handler holds API route handlers.
type Handler struct {
	ws       *workspace.Workspace
	events   EventPublisher
	metrics  *Metrics
	currency string
}

// NewHandler creates a new Handler. events and metrics may be nil.
func NewHandler(ws *workspace.Workspace, events EventPublisher, metrics *Metrics, currency string) *Handler {
	return &Handler{ws: ws, events: events, metrics: metrics, currency: currency}
}

// call runs fn under the workspace lock and records the operation.
func (h *Handler) call(domain, op string, fn func() error) error {
	err := h.ws.Exclusive(fn)
	h.metrics.Operation(domain, op, err)
	return err
}

func (h *Handler) publish(kind, domain, key string) {
	if h.events != nil {
		h.events.PublishRecordEvent(kind, domain, key)
	}
}

func idParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not a number", apperr.ErrMalformedInput, raw)
	}
	return id, nil
}
