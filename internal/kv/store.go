// Package kv provides the string key-value backends that consent and theme
// decisions are persisted in.
package kv

import (
	"errors"
	"fmt"
	"strings"

	"sitetheme/internal/preference"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store closed")

// Store is a preference.KeyValueStore that can also be cleared externally.
type Store interface {
	preference.KeyValueStore
	Delete(key string) error
	Clear() error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string
	Driver  string // sqlite only: "sqlite" (pure Go) or "sqlite3" (cgo)
}

// Open creates the configured backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileStore(opts.Path)
	case BackendSQLite:
		return NewSQLiteStore(opts.Path, opts.Driver)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
