// Package history persists the most recent scrape results, newest first.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/pkg/models"
)

const (
	// Key is the storage key the history list is persisted under
	Key = "scrapeHistory"
	// DefaultLimit is the number of results kept when no limit is configured
	DefaultLimit = 10
)

// Store owns the persisted history list. All mutation goes through it.
//
// The mutex only serializes writers within one process. Two processes sharing a
// backend can still lose an update (last write wins on the whole list).
type Store struct {
	kv    storage.Storage
	mu    sync.Mutex
	limit int
}

// New creates a history store over kv keeping at most limit entries
func New(kv storage.Storage, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{kv: kv, limit: limit}
}

// Limit returns the configured cap
func (s *Store) Limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limit
}

// SetLimit changes the cap. The persisted list is trimmed on the next Add.
func (s *Store) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.mu.Lock()
	s.limit = limit
	s.mu.Unlock()
}

// GetAll returns the persisted results newest first. Missing, unreadable or
// malformed data yields an empty list; the cause is logged, never returned.
func (s *Store) GetAll() []models.ScrapeResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the entry at index (0 is newest)
func (s *Store) Get(index int) (models.ScrapeResult, bool) {
	all := s.GetAll()
	if index < 0 || index >= len(all) {
		return models.ScrapeResult{}, false
	}
	return all[index], true
}

// Add prepends result and truncates the list to the cap.
// Serialization and storage failures (such as a full quota) are returned.
func (s *Store) Add(result models.ScrapeResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.load()
	items = append([]models.ScrapeResult{result}, items...)
	if len(items) > s.limit {
		items = items[:s.limit]
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize history: %w", err)
	}
	if err := s.kv.SetItem(Key, string(data)); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	log.Debug().
		Str("url", result.URL).
		Int("entries", len(items)).
		Int("limit", s.limit).
		Msg("History updated")
	return nil
}

// Clear removes all persisted history
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.RemoveItem(Key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	log.Debug().Msg("History cleared")
	return nil
}

// load must be called with the lock held
func (s *Store) load() []models.ScrapeResult {
	raw, err := s.kv.GetItem(Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("Error getting scrape history")
		}
		return []models.ScrapeResult{}
	}

	var items []models.ScrapeResult
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Msg("Malformed scrape history, treating as empty")
		return []models.ScrapeResult{}
	}
	if items == nil {
		items = []models.ScrapeResult{}
	}
	return items
}
