// Package storage provides the string key-value collaborator the stores persist into.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by GetItem when the key has no value.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned when a write would exceed the backend's capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrInvalidKey is returned for empty or unsafe keys.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage defines the contract of a key-value backend.
//
// Values are opaque strings (the stores write JSON). Implementations must not
// interpret values and must be safe for concurrent use.
type Storage interface {
	// GetItem returns the value stored under key, or ErrNotFound.
	GetItem(key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
)

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMemory, BackendFile, BackendKeyring, BackendSQLite}
}

// Options selects and configures a backend
type Options struct {
	Backend string
	// Dir is the data directory used by the file and sqlite backends.
	Dir string
	// MaxBytes bounds the memory backend. Zero uses DefaultMemoryQuota.
	MaxBytes int64
	// Service namespaces keyring entries. Empty uses DefaultKeyringService.
	Service string
}

// Open creates the backend described by opts.
func Open(opts Options) (Storage, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendMemory, "":
		return NewMemoryStore(opts.MaxBytes), nil
	case BackendFile:
		return NewFileStore(opts.Dir)
	case BackendKeyring:
		return NewKeyringStore(opts.Service), nil
	case BackendSQLite:
		return NewSQLiteStore(opts.Dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", opts.Backend, strings.Join(Backends(), ", "))
	}
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
