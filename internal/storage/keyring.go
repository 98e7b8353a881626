package storage

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keyring service name entries are stored under
const DefaultKeyringService = "scrapedeck"

// KeyringStore persists values in the OS keyring (Keychain, Secret Service, Credential Manager).
// Keyrings cap secret sizes (a few KB on some platforms), so oversized writes surface as
// ErrQuotaExceeded.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store that namespaces entries under service
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service}
}

// GetItem reads key from the keyring
func (k *KeyringStore) GetItem(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return value, nil
}

// SetItem stores key in the keyring
func (k *KeyringStore) SetItem(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		if errors.Is(err, keyring.ErrSetDataTooBig) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// RemoveItem deletes key from the keyring
func (k *KeyringStore) RemoveItem(key string) error {
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// Close is a no-op for the keyring store
func (k *KeyringStore) Close() error {
	return nil
}
