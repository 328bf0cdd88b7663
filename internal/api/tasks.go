package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/sse"
	"github.com/starford/assistant/internal/tasks"
	"github.com/starford/assistant/internal/workspace"
)

// taskFilter reads the done, priority and due_before query parameters.
func taskFilter(r *http.Request) (tasks.Filter, error) {
	var f tasks.Filter
	q := r.URL.Query()
	if v := q.Get("done"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: done %q", apperr.ErrMalformedInput, v)
		}
		f.Done = &done
	}
	if v := q.Get("priority"); v != "" {
		p, err := models.ParsePriority(v)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}
	if v := q.Get("due_before"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return f, err
		}
		f.DueBy = &d
	}
	return f, nil
}

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	f, err := taskFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var list []models.Task
	_ = h.call(workspace.DomainTasks, "list", func() error {
		list = h.ws.Tasks.List(f)
		return nil
	})
	writeJSON(w, http.StatusOK, TaskListResponse{Tasks: list, Total: len(list)})
}

// GetTask handles GET /api/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var t models.Task
	if err := h.call(workspace.DomainTasks, "get", func() (err error) {
		t, err = h.ws.Tasks.Get(id)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTask handles POST /api/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var t models.Task
	if err := h.call(workspace.DomainTasks, "add", func() (err error) {
		t, err = h.ws.Tasks.Add(req.Title, req.Description, req.Priority, req.DueDate)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindCreated, workspace.DomainTasks, strconv.Itoa(t.ID))
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTask handles PATCH /api/tasks/{id}. Unknown fields are ignored.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
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
	patch, err := models.TaskPatchFromFields(fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var t models.Task
	if err := h.call(workspace.DomainTasks, "edit", func() (err error) {
		t, err = h.ws.Tasks.Edit(id, patch)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindUpdated, workspace.DomainTasks, strconv.Itoa(id))
	writeJSON(w, http.StatusOK, t)
}

// CompleteTask handles POST /api/tasks/{id}/done.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var t models.Task
	if err := h.call(workspace.DomainTasks, "done", func() (err error) {
		t, err = h.ws.Tasks.MarkDone(id)
		return err
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindUpdated, workspace.DomainTasks, strconv.Itoa(id))
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.call(workspace.DomainTasks, "delete", func() error {
		return h.ws.Tasks.Delete(id)
	}); err != nil {
		writeError(w, r, err)
		return
	}
	h.publish(sse.KindDeleted, workspace.DomainTasks, strconv.Itoa(id))
	w.WriteHeader(http.StatusNoContent)
}
