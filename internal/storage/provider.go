// Package storage defines the data-directory abstraction backing every manager.
package storage

// Provider is the interface for backing-store file operations.
// Names are relative to the data directory.
type Provider interface {
	// Read returns the raw bytes of the named store. A missing store yields
	// an error matching os.ErrNotExist.
	Read(name string) ([]byte, error)
	// Write atomically replaces the named store with content.
	Write(name string, content []byte) error
	// Path returns the absolute path of the named store.
	Path(name string) (string, error)
	// Root returns the absolute data directory.
	Root() string
}
