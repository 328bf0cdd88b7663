// Package notes manages the note collection and its backing store.
package notes

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/collection"
	"github.com/starford/assistant/internal/date"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/storage"
	"github.com/starford/assistant/internal/tabular"
)

// DefaultStore is the backing store name used when none is configured.
const DefaultStore = "notes.json"

// Codec is the CSV column layout for notes.
var Codec = tabular.Codec[models.Note]{
	Header: []string{"note_id", "title", "content", "timestamp"},
	Encode: func(n models.Note) []string {
		return []string{strconv.Itoa(n.ID), n.Title, n.Content, n.Timestamp}
	},
	Decode: func(row map[string]string) (models.Note, error) {
		id, err := strconv.Atoi(strings.TrimSpace(row["note_id"]))
		if err != nil {
			return models.Note{}, fmt.Errorf("%w: note_id %q", apperr.ErrMalformedInput, row["note_id"])
		}
		return models.Note{ID: id, Title: row["title"], Content: row["content"], Timestamp: row["timestamp"]}, nil
	},
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for note timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager owns the notes and their backing store.
type Manager struct {
	records *collection.Collection[models.Note]
	logger  *slog.Logger
	now     func() time.Time
}

// New loads the notes store. A missing store yields an empty manager whose
// Absent method reports true.
func New(store storage.Provider, name string, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("manager", "notes"))
	records, err := collection.Open[models.Note](store, name, logger)
	if err != nil {
		return nil, err
	}
	m := &Manager{records: records, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Add creates a note stamped with the current time.
func (m *Manager) Add(title, content string) (models.Note, error) {
	n := models.Note{
		ID:        m.records.NextID(),
		Title:     title,
		Content:   content,
		Timestamp: date.Stamp(m.now()),
	}
	if err := m.records.Append(n); err != nil {
		return models.Note{}, err
	}
	m.logger.Debug("note added", slog.Int("id", n.ID))
	return n, nil
}

// Get returns the note with the given id.
func (m *Manager) Get(id int) (models.Note, error) {
	n, ok := m.records.FindID(id)
	if !ok {
		return models.Note{}, notFound(id)
	}
	return n, nil
}

// List returns every note in creation order.
func (m *Manager) List() []models.Note {
	return m.records.All()
}

// Edit applies patch to the note and refreshes its timestamp, even when the
// patch sets no field.
func (m *Manager) Edit(id int, patch models.NotePatch) (models.Note, error) {
	i := m.records.Index(func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return models.Note{}, notFound(id)
	}
	n := m.records.At(i)
	patch.Apply(&n)
	n.Timestamp = date.Stamp(m.now())
	if err := m.records.Set(i, n); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// Delete removes the note with the given id.
func (m *Manager) Delete(id int) error {
	i := m.records.Index(func(n models.Note) bool { return n.ID == id })
	if i < 0 {
		return notFound(id)
	}
	return m.records.RemoveAt(i)
}

// Export writes every note to a CSV file at path.
func (m *Manager) Export(path string) error {
	return tabular.Export(path, Codec, m.records.All())
}

// Import appends every row of the CSV file at path, keeping the ids found in
// the file. Ids that collide with existing notes are logged, not renumbered.
func (m *Manager) Import(path string) (int, error) {
	recs, err := tabular.Import(path, Codec)
	if err != nil {
		return 0, err
	}
	for _, n := range recs {
		if _, ok := m.records.FindID(n.ID); ok {
			m.logger.Warn("imported note id collides with existing note", slog.Int("id", n.ID))
		}
	}
	if err := m.records.Append(recs...); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Reload re-reads the backing store.
func (m *Manager) Reload() error { return m.records.Reload() }

// Absent reports whether no backing store existed when the notes were loaded.
func (m *Manager) Absent() bool { return m.records.Absent() }

// StoreName returns the backing store name.
func (m *Manager) StoreName() string { return m.records.Name() }

// Checksum returns the digest of the last store contents read or written.
func (m *Manager) Checksum() string { return m.records.Checksum() }

func notFound(id int) error {
	return fmt.Errorf("note %d: %w", id, apperr.ErrNotFound)
}
