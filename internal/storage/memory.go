package storage

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultMemoryQuota mirrors the ~5MB budget browsers give local storage.
const DefaultMemoryQuota int64 = 5 * 1024 * 1024

// MemoryStore keeps values in process memory with a byte quota.
// It is the default for tests and for --storage=memory runs.
type MemoryStore struct {
	items   map[string]string
	mu      sync.RWMutex
	maxSize int64 // Quota in bytes (keys + values)
	size    int64 // Current size in bytes
	hits    uint64
	misses  uint64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(maxSizeBytes int64) *MemoryStore {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMemoryQuota
	}
	return &MemoryStore{
		items:   make(map[string]string),
		maxSize: maxSizeBytes,
	}
}

// GetItem returns the value for key
func (m *MemoryStore) GetItem(key string) (string, error) {
	m.mu.Lock() // write lock for hit/miss counters
	value, exists := m.items[key]
	if !exists {
		m.misses++
		m.mu.Unlock()
		return "", ErrNotFound
	}
	m.hits++
	m.mu.Unlock()
	return value, nil
}

// SetItem stores value, failing with ErrQuotaExceeded instead of evicting
func (m *MemoryStore) SetItem(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	newSize := m.size + entrySize(key, value)
	if old, exists := m.items[key]; exists {
		newSize -= entrySize(key, old)
	}
	if newSize > m.maxSize {
		log.Debug().
			Str("key", key).
			Int64("size_bytes", newSize).
			Int64("max_size", m.maxSize).
			Msg("Memory store quota exceeded")
		return ErrQuotaExceeded
	}

	m.items[key] = value
	m.size = newSize
	return nil
}

// RemoveItem deletes key
func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.items[key]; exists {
		m.size -= entrySize(key, old)
		delete(m.items, key)
	}
	return nil
}

// Close is a no-op for the memory store
func (m *MemoryStore) Close() error {
	return nil
}

// Stats returns usage statistics
func (m *MemoryStore) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"entries":     len(m.items),
		"size_bytes":  m.size,
		"max_size":    m.maxSize,
		"utilization": float64(m.size) / float64(m.maxSize) * 100,
		"hits":        m.hits,
		"misses":      m.misses,
	}
}

func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
