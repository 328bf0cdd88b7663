// Package workspace opens the four managers over one data directory and
// serializes access to them for the concurrent surfaces.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/assistant/internal/contacts"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/notes"
	"github.com/starford/assistant/internal/storage"
	"github.com/starford/assistant/internal/tasks"
)

// Domain names, used in events, metrics and log attributes.
const (
	DomainNotes    = "notes"
	DomainTasks    = "tasks"
	DomainContacts = "contacts"
	DomainFinance  = "finance"
)

// Files locates the backing stores. Empty names fall back to each manager's
// default store name.
type Files struct {
	Dir      string
	Notes    string
	Tasks    string
	Contacts string
	Finance  string
}

// Store is the persistence surface shared by every manager.
type Store interface {
	StoreName() string
	Checksum() string
	Absent() bool
	Reload() error
}

// Domain pairs a domain name with its manager.
type Domain struct {
	Name  string
	Store Store
}

// Workspace holds the managers. Managers are not safe for concurrent use;
// callers running handlers concurrently go through Exclusive.
type Workspace struct {
	Notes    *notes.Manager
	Tasks    *tasks.Manager
	Contacts *contacts.Manager
	Finance  *finance.Manager

	store *storage.FS
	mu    sync.Mutex
}

// Open creates the data directory if needed and loads every manager.
func Open(files Files, logger *slog.Logger, noteOpts ...notes.Option) (*Workspace, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(files.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.NewFS(files.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	w := &Workspace{store: store}
	if w.Notes, err = notes.New(store, orDefault(files.Notes, notes.DefaultStore), logger, noteOpts...); err != nil {
		return nil, err
	}
	if w.Tasks, err = tasks.New(store, orDefault(files.Tasks, tasks.DefaultStore), logger); err != nil {
		return nil, err
	}
	if w.Contacts, err = contacts.New(store, orDefault(files.Contacts, contacts.DefaultStore), logger); err != nil {
		return nil, err
	}
	if w.Finance, err = finance.New(store, orDefault(files.Finance, finance.DefaultStore), logger); err != nil {
		return nil, err
	}
	return w, nil
}

func orDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// Root returns the data directory.
func (w *Workspace) Root() string { return w.store.Root() }

// Path resolves a store name to its absolute path.
func (w *Workspace) Path(name string) (string, error) { return w.store.Path(name) }

// Domains lists the managers in menu order.
func (w *Workspace) Domains() []Domain {
	return []Domain{
		{Name: DomainNotes, Store: w.Notes},
		{Name: DomainTasks, Store: w.Tasks},
		{Name: DomainContacts, Store: w.Contacts},
		{Name: DomainFinance, Store: w.Finance},
	}
}

// Exclusive runs fn while holding the workspace lock. fn must not call
// Exclusive itself.
func (w *Workspace) Exclusive(fn func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn()
}
