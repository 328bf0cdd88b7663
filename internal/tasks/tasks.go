// Package tasks manages the to-do list and its backing store.
package tasks

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/collection"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/storage"
	"github.com/starford/assistant/internal/tabular"
)

// DefaultStore is the backing store name used when none is configured.
const DefaultStore = "tasks.json"

// Codec is the CSV column layout for tasks.
var Codec = tabular.Codec[models.Task]{
	Header: []string{"task_id", "title", "description", "done", "priority", "due_date"},
	Encode: func(t models.Task) []string {
		return []string{
			strconv.Itoa(t.ID),
			t.Title,
			t.Description,
			strconv.FormatBool(t.Done),
			string(t.Priority),
			t.DueDate.String(),
		}
	},
	Decode: decodeRow,
}

func decodeRow(row map[string]string) (models.Task, error) {
	id, err := strconv.Atoi(strings.TrimSpace(row["task_id"]))
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: task_id %q", apperr.ErrMalformedInput, row["task_id"])
	}
	done, err := strconv.ParseBool(strings.TrimSpace(row["done"]))
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: done %q", apperr.ErrMalformedInput, row["done"])
	}
	prio, err := models.ParsePriority(row["priority"])
	if err != nil {
		return models.Task{}, err
	}
	var due date.Date
	if s := strings.TrimSpace(row["due_date"]); s != "" {
		if due, err = date.Parse(s); err != nil {
			return models.Task{}, err
		}
	}
	return models.Task{
		ID:          id,
		Title:       row["title"],
		Description: row["description"],
		Done:        done,
		Priority:    prio,
		DueDate:     due,
	}, nil
}

// Filter selects tasks for List. Nil fields impose no constraint; set fields
// are combined with AND.
type Filter struct {
	Done     *bool
	Priority *models.Priority
	// DueBy keeps tasks due on or before the date. Tasks without a due date
	// never match.
	DueBy *date.Date
}

func (f Filter) predicates() []func(models.Task) bool {
	var preds []func(models.Task) bool
	if f.Done != nil {
		done := *f.Done
		preds = append(preds, func(t models.Task) bool { return t.Done == done })
	}
	if f.Priority != nil {
		prio := *f.Priority
		preds = append(preds, func(t models.Task) bool { return t.Priority == prio })
	}
	if f.DueBy != nil {
		by := *f.DueBy
		preds = append(preds, func(t models.Task) bool {
			return !t.DueDate.IsZero() && !t.DueDate.After(by)
		})
	}
	return preds
}

// Manager owns the tasks and their backing store.
type Manager struct {
	records *collection.Collection[models.Task]
	logger  *slog.Logger
}

// New loads the tasks store. A missing store yields an empty manager whose
// Absent method reports true.
func New(store storage.Provider, name string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("manager", "tasks"))
	records, err := collection.Open[models.Task](store, name, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{records: records, logger: logger}, nil
}

// Add creates an open task. priority accepts anything models.ParsePriority
// does and dueDate must be DD-MM-YYYY.
func (m *Manager) Add(title, description, priority, dueDate string) (models.Task, error) {
	prio, err := models.ParsePriority(priority)
	if err != nil {
		return models.Task{}, err
	}
	due, err := date.Parse(dueDate)
	if err != nil {
		return models.Task{}, err
	}
	t := models.Task{
		ID:          m.records.NextID(),
		Title:       title,
		Description: description,
		Priority:    prio,
		DueDate:     due,
	}
	if err := m.records.Append(t); err != nil {
		return models.Task{}, err
	}
	m.logger.Debug("task added", slog.Int("id", t.ID))
	return t, nil
}

// Get returns the task with the given id.
func (m *Manager) Get(id int) (models.Task, error) {
	t, ok := m.records.FindID(id)
	if !ok {
		return models.Task{}, notFound(id)
	}
	return t, nil
}

// List returns the tasks matching f in creation order.
func (m *Manager) List(f Filter) []models.Task {
	return m.records.Filter(f.predicates()...)
}

// Edit applies patch to the task.
func (m *Manager) Edit(id int, patch models.TaskPatch) (models.Task, error) {
	return m.update(id, patch.Apply)
}

// MarkDone sets the task's done flag.
func (m *Manager) MarkDone(id int) (models.Task, error) {
	return m.update(id, func(t *models.Task) { t.Done = true })
}

func (m *Manager) update(id int, fn func(*models.Task)) (models.Task, error) {
	i := m.records.Index(func(t models.Task) bool { return t.ID == id })
	if i < 0 {
		return models.Task{}, notFound(id)
	}
	t := m.records.At(i)
	fn(&t)
	if err := m.records.Set(i, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Delete removes the task with the given id.
func (m *Manager) Delete(id int) error {
	i := m.records.Index(func(t models.Task) bool { return t.ID == id })
	if i < 0 {
		return notFound(id)
	}
	return m.records.RemoveAt(i)
}

// Export writes every task to a CSV file at path.
func (m *Manager) Export(path string) error {
	return tabular.Export(path, Codec, m.records.All())
}

// Import appends every row of the CSV file at path, keeping the ids found in
// the file.
func (m *Manager) Import(path string) (int, error) {
	recs, err := tabular.Import(path, Codec)
	if err != nil {
		return 0, err
	}
	for _, t := range recs {
		if _, ok := m.records.FindID(t.ID); ok {
			m.logger.Warn("imported task id collides with existing task", slog.Int("id", t.ID))
		}
	}
	if err := m.records.Append(recs...); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Reload re-reads the backing store.
func (m *Manager) Reload() error { return m.records.Reload() }

// Absent reports whether no backing store existed when the tasks were loaded.
func (m *Manager) Absent() bool { return m.records.Absent() }

// StoreName returns the backing store name.
func (m *Manager) StoreName() string { return m.records.Name() }

// Checksum returns the digest of the last store contents read or written.
func (m *Manager) Checksum() string { return m.records.Checksum() }

func notFound(id int) error {
	return fmt.Errorf("task %d: %w", id, apperr.ErrNotFound)
}
