// Package finance manages the income and expense ledger and derives balance
// reports from it. Positive amounts are income, negative amounts expenses.
package finance

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
const DefaultStore = "finance.json"

// Codec is the CSV column layout for finance records.
var Codec = tabular.Codec[models.FinanceRecord]{
	Header: []string{"record_id", "amount", "category", "date", "description"},
	Encode: func(r models.FinanceRecord) []string {
		return []string{strconv.Itoa(r.ID), r.Amount.String(), r.Category, r.Date.String(), r.Description}
	},
	Decode: func(row map[string]string) (models.FinanceRecord, error) {
		id, err := strconv.Atoi(strings.TrimSpace(row["record_id"]))
		if err != nil {
			return models.FinanceRecord{}, fmt.Errorf("%w: record_id %q", apperr.ErrMalformedInput, row["record_id"])
		}
		amount, err := models.ParseAmount(row["amount"])
		if err != nil {
			return models.FinanceRecord{}, err
		}
		d, err := date.Parse(row["date"])
		if err != nil {
			return models.FinanceRecord{}, err
		}
		return models.FinanceRecord{
			ID:          id,
			Amount:      amount,
			Category:    row["category"],
			Date:        d,
			Description: row["description"],
		}, nil
	},
}

// Filter selects records for List. Nil fields impose no constraint.
type Filter struct {
	Category *string
	// Until keeps records dated on or before the date.
	Until *date.Date
}

func (f Filter) predicates() []func(models.FinanceRecord) bool {
	var preds []func(models.FinanceRecord) bool
	if f.Category != nil {
		cat := *f.Category
		preds = append(preds, func(r models.FinanceRecord) bool { return r.Category == cat })
	}
	if f.Until != nil {
		until := *f.Until
		preds = append(preds, func(r models.FinanceRecord) bool { return !r.Date.After(until) })
	}
	return preds
}

// Manager owns the finance records and their backing store.
type Manager struct {
	records *collection.Collection[models.FinanceRecord]
	logger  *slog.Logger
}

// New loads the finance store. A missing store yields an empty manager whose
// Absent method reports true.
func New(store storage.Provider, name string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("manager", "finance"))
	records, err := collection.Open[models.FinanceRecord](store, name, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{records: records, logger: logger}, nil
}

// Add records a movement. amount is a signed decimal and day is DD-MM-YYYY.
func (m *Manager) Add(amount, category, day, description string) (models.FinanceRecord, error) {
	a, err := models.ParseAmount(amount)
	if err != nil {
		return models.FinanceRecord{}, err
	}
	d, err := date.Parse(day)
	if err != nil {
		return models.FinanceRecord{}, err
	}
	r := models.FinanceRecord{
		ID:          m.records.NextID(),
		Amount:      a,
		Category:    category,
		Date:        d,
		Description: description,
	}
	if err := m.records.Append(r); err != nil {
		return models.FinanceRecord{}, err
	}
	m.logger.Debug("finance record added", slog.Int("id", r.ID))
	return r, nil
}

// Get returns the record with the given id.
func (m *Manager) Get(id int) (models.FinanceRecord, error) {
	r, ok := m.records.FindID(id)
	if !ok {
		return models.FinanceRecord{}, notFound(id)
	}
	return r, nil
}

// List returns the records matching f in creation order.
func (m *Manager) List(f Filter) []models.FinanceRecord {
	return m.records.Filter(f.predicates()...)
}

// Edit applies patch to the record.
func (m *Manager) Edit(id int, patch models.FinancePatch) (models.FinanceRecord, error) {
	i := m.records.Index(func(r models.FinanceRecord) bool { return r.ID == id })
	if i < 0 {
		return models.FinanceRecord{}, notFound(id)
	}
	r := m.records.At(i)
	patch.Apply(&r)
	if err := m.records.Set(i, r); err != nil {
		return models.FinanceRecord{}, err
	}
	return r, nil
}

// Delete removes the record with the given id.
func (m *Manager) Delete(id int) error {
	i := m.records.Index(func(r models.FinanceRecord) bool { return r.ID == id })
	if i < 0 {
		return notFound(id)
	}
	return m.records.RemoveAt(i)
}

// Report summarizes the records dated within [start, end], both inclusive.
func (m *Manager) Report(start, end date.Date) Report {
	in := m.records.Filter(func(r models.FinanceRecord) bool {
		return !r.Date.Before(start) && !r.Date.After(end)
	})
	return Report{
		Start:      start,
		End:        end,
		Totals:     totals(in),
		Categories: byCategory(in),
	}
}

// Balance summarizes every record.
func (m *Manager) Balance() Totals {
	return totals(m.records.All())
}

// Export writes every record to a CSV file at path.
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
	for _, r := range recs {
		if _, ok := m.records.FindID(r.ID); ok {
			m.logger.Warn("imported finance record id collides with existing record", slog.Int("id", r.ID))
		}
	}
	if err := m.records.Append(recs...); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Reload re-reads the backing store.
func (m *Manager) Reload() error { return m.records.Reload() }

// Absent reports whether no backing store existed when the records were loaded.
func (m *Manager) Absent() bool { return m.records.Absent() }

// StoreName returns the backing store name.
func (m *Manager) StoreName() string { return m.records.Name() }

// Checksum returns the digest of the last store contents read or written.
func (m *Manager) Checksum() string { return m.records.Checksum() }

func notFound(id int) error {
	return fmt.Errorf("finance record %d: %w", id, apperr.ErrNotFound)
}
