// Package collection implements the ordered, file-backed record collection that every
// manager is built on: the whole collection is loaded on open and rewritten on every
// mutation.
package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/starford/assistant/internal/apperr"
	"github.com/starford/assistant/internal/checksum"
	"github.com/starford/assistant/internal/storage"
)

// Record is implemented by every type a Collection can hold.
type Record interface {
	RecordID() int
}

// Collection owns an in-memory slice of records in insertion order and the
// backing store it is persisted to.
type Collection[T Record] struct {
	store  storage.Provider
	name   string
	logger *slog.Logger

	items  []T
	absent bool
	sum    string // checksum of the last bytes read or written
}

// Open loads the named store. A missing store is not an error: the collection
// starts empty and Absent reports true until the first save.
func Open[T Record](store storage.Provider, name string, logger *slog.Logger) (*Collection[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collection[T]{
		store:  store,
		name:   name,
		logger: logger.With(slog.String("store", name)),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection[T]) load() error {
	data, err := c.store.Read(c.name)
	if errors.Is(err, fs.ErrNotExist) {
		c.items = nil
		c.absent = true
		c.sum = ""
		c.logger.Info("no saved records, starting empty")
		return nil
	}
	if err != nil {
		return fmt.Errorf("collection: load %s: %w", c.name, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("collection: decode %s: %w: %v", c.name, apperr.ErrMalformedInput, err)
	}
	c.items = items
	c.absent = false
	c.sum = checksum.Sum(data)
	c.logger.Debug("records loaded", slog.Int("count", len(items)))
	return nil
}

// Reload discards the in-memory state and reads the store again.
func (c *Collection[T]) Reload() error {
	return c.load()
}

// Name returns the backing store name.
func (c *Collection[T]) Name() string { return c.name }

// Absent reports whether the backing store did not exist at the last load
// and nothing has been saved since.
func (c *Collection[T]) Absent() bool { return c.absent }

// Checksum returns the digest of the bytes last read from or written to the store.
func (c *Collection[T]) Checksum() string { return c.sum }

// At returns the record at position i.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// All returns a copy of the records in insertion order. The result is never nil.
func (c *Collection[T]) All() []T { return append(make([]T, 0, len(c.items)), c.items...) }

// NextID returns max(existing ids)+1, or 1 when empty. Ids freed by deletion
// are not reused unless they were the maximum.
func (c *Collection[T]) NextID() int {
	maxID := 0
	for _, it := range c.items {
		maxID = max(maxID, it.RecordID())
	}
	return maxID + 1
}

// Index returns the position of the first record matching pred, or -1.
func (c *Collection[T]) Index(pred func(T) bool) int {
	return slices.IndexFunc(c.items, pred)
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	if i := c.Index(pred); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// FindID returns the record with the given id.
func (c *Collection[T]) FindID(id int) (T, bool) {
	return c.Find(func(it T) bool { return it.RecordID() == id })
}

// Filter returns, in order, the records satisfying every predicate.
// With no predicates it returns all records.
func (c *Collection[T]) Filter(preds ...func(T) bool) []T {
	out := make([]T, 0, len(c.items))
outer:
	for _, it := range c.items {
		for _, p := range preds {
			if !p(it) {
				continue outer
			}
		}
		out = append(out, it)
	}
	return out
}

// Append adds records at the end and persists.
func (c *Collection[T]) Append(recs ...T) error {
	return c.mutate(func(items []T) []T { return append(items, recs...) })
}

// Set replaces the record at position i and persists.
func (c *Collection[T]) Set(i int, rec T) error {
	return c.mutate(func(items []T) []T {
		items[i] = rec
		return items
	})
}

// RemoveAt deletes the record at position i and persists.
func (c *Collection[T]) RemoveAt(i int) error {
	return c.mutate(func(items []T) []T { return slices.Delete(items, i, i+1) })
}

// mutate applies fn to a copy of the records and persists the result. When the
// write fails the previous in-memory state is restored so memory never runs
// ahead of the store.
func (c *Collection[T]) mutate(fn func([]T) []T) error {
	prev := c.items
	c.items = fn(slices.Clone(prev))
	if err := c.Save(); err != nil {
		c.items = prev
		return err
	}
	return nil
}

// Save rewrites the whole store from memory.
func (c *Collection[T]) Save() error {
	items := c.items
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("collection: encode %s: %w", c.name, err)
	}
	if err := c.store.Write(c.name, data); err != nil {
		return fmt.Errorf("collection: save %s: %w", c.name, err)
	}
	c.absent = false
	c.sum = checksum.Sum(data)
	c.logger.Debug("records saved", slog.Int("count", len(c.items)))
	return nil
}
