package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/sse"
	"github.com/starford/assistant/internal/workspace"
)

// contactKey extracts the name or phone from the URL. chi routes on RawPath
// when it is set, and only then is the key still encoded.
func contactKey(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListContacts handles GET /api/contacts.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	var list []models.Contact
	_ = h.call(workspace.DomainContacts, "list", func() error {
		list = h.ws.Contacts.List()
		return nil
	})
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: list, Total: len(list)})
}

// GetContact handles GET /api/contacts/{key}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	key := contactKey(r)
	var c models.Contact
	if err := h.call(workspace.DomainContacts, "find", func() (err error) {
		c, err = h.ws.Contacts.Find(key)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateContact handles POST /api/contacts.
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var c models.Contact
	if err := h.call(workspace.DomainContacts, "add", func() (err error) {
		c, err = h.ws.Contacts.Add(req.Name, req.Phone, req.Email)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindCreated, workspace.DomainContacts, c.Name)
	writeJSON(w, http.StatusCreated, c)
}

// UpdateContact handles PATCH /api/contacts/{key}. Unknown fields are ignored.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	key := contactKey(r)
	fields, err := decodeFields(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var c models.Contact
	if err := h.call(workspace.DomainContacts, "edit", func() (err error) {
		c, err = h.ws.Contacts.Edit(key, models.ContactPatchFromFields(fields))
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindUpdated, workspace.DomainContacts, key)
	writeJSON(w, http.StatusOK, c)
}

// DeleteContact handles DELETE /api/contacts/{key}.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	key := contactKey(r)
	if err := h.call(workspace.DomainContacts, "delete", func() error {
		return h.ws.Contacts.Delete(key)
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindDeleted, workspace.DomainContacts, key)
	w.WriteHeader(http.StatusNoContent)
}
