// =============================================================================
// Pallet Manifest Importer - Key-Value Store
// =============================================================================
//
// The session and the settings persist small JSON documents under fixed
// keys ("import.clean", "import.summary", "import.source", "settings").
// This package provides the storage port they write through, with three
// backends:
//
//   - memory: process lifetime only (tests, --no-persist)
//   - file:   one file per key under a directory
//   - sqlite: one row per key in a single table
//
// =============================================================================

package kvstore

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key. ok is false when the key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Open creates the backend selected by cfg.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageFile:
		return NewFileStore(cfg.Path)
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
