package api

import (
	"net/http"
	"strconv"

	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/sse"
	"github.com/starford/assistant/internal/workspace"
)

// ListNotes handles GET /api/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	var list []models.Note
	_ = h.call(workspace.DomainNotes, "list", func() error {
		list = h.ws.Notes.List()
		return nil
	})
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: list, Total: len(list)})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var n models.Note
	if err := h.call(workspace.DomainNotes, "get", func() (err error) {
		n, err = h.ws.Notes.Get(id)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var n models.Note
	if err := h.call(workspace.DomainNotes, "add", func() (err error) {
		n, err = h.ws.Notes.Add(req.Title, req.Content)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindCreated, workspace.DomainNotes, strconv.Itoa(n.ID))
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PATCH /api/notes/{id}. Unknown fields are ignored.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var n models.Note
	if err := h.call(workspace.DomainNotes, "edit", func() (err error) {
		n, err = h.ws.Notes.Edit(id, models.NotePatchFromFields(fields))
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindUpdated, workspace.DomainNotes, strconv.Itoa(id))
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.call(workspace.DomainNotes, "delete", func() error {
		return h.ws.Notes.Delete(id)
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindDeleted, workspace.DomainNotes, strconv.Itoa(id))
	w.WriteHeader(http.StatusNoContent)
}
