// Package contacts manages the address book. Contacts are addressed by name
// or phone rather than by id; the first match in creation order wins.
package contacts

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/collection"
	"github.com/starford/assistant/internal/models"
	"github.com/starford/assistant/internal/storage"
	"github.com/starford/assistant/internal/tabular"
)

// DefaultStore is the backing store name used when none is configured.
const DefaultStore = "contacts.json"

// Codec is the CSV column layout for contacts.
var Codec = tabular.Codec[models.Contact]{
	Header: []string{"contact_id", "name", "phone", "email"},
	Encode: func(c models.Contact) []string {
		return []string{strconv.Itoa(c.ID), c.Name, c.Phone, c.Email}
	},
	Decode: func(row map[string]string) (models.Contact, error) {
		id, err := strconv.Atoi(strings.TrimSpace(row["contact_id"]))
		if err != nil {
			return models.Contact{}, fmt.Errorf("%w: contact_id %q", apperr.ErrMalformedInput, row["contact_id"])
		}
		return models.Contact{ID: id, Name: row["name"], Phone: row["phone"], Email: row["email"]}, nil
	},
}

// Manager owns the contacts and their backing store.
type Manager struct {
	records *collection.Collection[models.Contact]
	logger  *slog.Logger
}

// New loads the contacts store. A missing store yields an empty manager whose
// Absent method reports true.
func New(store storage.Provider, name string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("manager", "contacts"))
	records, err := collection.Open[models.Contact](store, name, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{records: records, logger: logger}, nil
}

// Add creates a contact. Duplicate names or phones are allowed.
func (m *Manager) Add(name, phone, email string) (models.Contact, error) {
	c := models.Contact{ID: m.records.NextID(), Name: name, Phone: phone, Email: email}
	if err := m.records.Append(c); err != nil {
		return models.Contact{}, err
	}
	m.logger.Debug("contact added", slog.Int("id", c.ID))
	return c, nil
}

// Find returns the first contact whose name or phone equals info.
func (m *Manager) Find(info string) (models.Contact, error) {
	c, ok := m.records.Find(func(c models.Contact) bool { return c.Matches(info) })
	if !ok {
		return models.Contact{}, notFound(info)
	}
	return c, nil
}

// List returns every contact in creation order.
func (m *Manager) List() []models.Contact {
	return m.records.All()
}

// Edit applies patch to the first contact matching info.
func (m *Manager) Edit(info string, patch models.ContactPatch) (models.Contact, error) {
	i := m.index(info)
	if i < 0 {
		return models.Contact{}, notFound(info)
	}
	c := m.records.At(i)
	patch.Apply(&c)
	if err := m.records.Set(i, c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Delete removes the first contact matching info.
func (m *Manager) Delete(info string) error {
	i := m.index(info)
	if i < 0 {
		return notFound(info)
	}
	return m.records.RemoveAt(i)
}

func (m *Manager) index(info string) int {
	return m.records.Index(func(c models.Contact) bool { return c.Matches(info) })
}

// Export writes every contact to a CSV file at path.
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
	for _, c := range recs {
		if _, ok := m.records.FindID(c.ID); ok {
			m.logger.Warn("imported contact id collides with existing contact", slog.Int("id", c.ID))
		}
	}
	if err := m.records.Append(recs...); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Reload re-reads the backing store.
func (m *Manager) Reload() error { return m.records.Reload() }

// Absent reports whether no backing store existed when the contacts were loaded.
func (m *Manager) Absent() bool { return m.records.Absent() }

// StoreName returns the backing store name.
func (m *Manager) StoreName() string { return m.records.Name() }

// Checksum returns the digest of the last store contents read or written.
func (m *Manager) Checksum() string { return m.records.Checksum() }

func notFound(info string) error {
	return fmt.Errorf("contact %q: %w", info, apperr.ErrNotFound)
}
