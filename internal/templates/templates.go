// Package templates stores named, reusable scrape request presets.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// Key is the storage key templates are persisted under
const Key = "scrapeTemplates"

// DefaultURL seeds the URL of newly created templates
const DefaultURL = "https://example.com"

// Sort orders accepted by Filter
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortName     = "name"
	SortLastUsed = "last-used"
)

var (
	ErrNotFound     = errors.New("template not found")
	ErrNameRequired = errors.New("template name is required")
)

// Store persists templates as one JSON list
type Store struct {
	kv  storage.Storage
	mu  sync.Mutex
	now func() time.Time
}

// New creates a template store over kv
func New(kv storage.Storage) *Store {
	return &Store{
		kv:  kv,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// List returns all templates in insertion order. Malformed data yields an empty list.
func (s *Store) List() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the template with id
func (s *Store) Get(id string) (models.Template, error) {
	for _, t := range s.List() {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find resolves ref as an id first, then as a case-insensitive name
func (s *Store) Find(ref string) (models.Template, error) {
	list := s.List()
	for _, t := range list {
		if t.ID == ref {
			return t, nil
		}
	}
	for _, t := range list {
		if strings.EqualFold(t.Name, ref) {
			return t, nil
		}
	}
	return models.Template{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Create adds an empty template with default options
func (s *Store) Create(name, description string) (models.Template, error) {
	t := models.Template{
		Name:        name,
		Description: description,
		URL:         DefaultURL,
		Patterns:    []models.PatternSpec{},
		Options: models.ScrapeOptions{
			IncludeHTML:  models.Bool(true),
			IncludeText:  models.Bool(true),
			MaxDepth:     models.Int(1),
			RequestDelay: models.Int(0),
		},
	}
	return s.Save(t)
}

// FromResult builds a template from a stored scrape result, reusing its URL and patterns
func (s *Store) FromResult(name, description string, r models.ScrapeResult) (models.Template, error) {
	req := models.RequestFromResult(r)
	return s.Save(models.Template{
		Name:        name,
		Description: description,
		URL:         req.URL,
		Patterns:    req.Patterns,
	})
}

// Save inserts t, or replaces the template with the same id. Missing ids and
// creation times are assigned.
func (s *Store) Save(t models.Template) (models.Template, error) {
	if strings.TrimSpace(t.Name) == "" {
		return models.Template{}, ErrNameRequired
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if t.Patterns == nil {
		t.Patterns = []models.PatternSpec{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	replaced := false
	for i := range list {
		if list[i].ID == t.ID {
			list[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, t)
	}

	if err := s.persist(list); err != nil {
		return models.Template{}, err
	}
	log.Debug().Str("id", t.ID).Str("name", t.Name).Bool("replaced", replaced).Msg("Template saved")
	return t, nil
}

// Delete removes the template with id
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.persist(kept)
}

// MarkUsed stamps the template's last-used time
func (s *Store) MarkUsed(id string) (models.Template, error) {
	t, err := s.Get(id)
	if err != nil {
		return models.Template{}, err
	}
	now := s.now()
	t.LastUsed = &now
	return s.Save(t)
}

// Filter returns the templates whose name or description contains query
// (case-insensitive), ordered by sortBy. Unknown sort orders fall back to last-used.
func Filter(list []models.Template, query, sortBy string) []models.Template {
	q := strings.ToLower(query)
	out := make([]models.Template, 0, len(list))
	for _, t := range list {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch sortBy {
		case SortNewest:
			return a.CreatedAt.After(b.CreatedAt)
		case SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return lastUsed(a).After(lastUsed(b))
		}
	})
	return out
}

func lastUsed(t models.Template) time.Time {
	if t.LastUsed == nil {
		return time.Time{}
	}
	return *t.LastUsed
}

// Export writes templates as a YAML document
func Export(w io.Writer, list []models.Template) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	return enc.Close()
}

// Import reads a YAML document written by Export (a list, or a single template)
// and saves every entry. Imported templates keep their ids, replacing local copies.
func (s *Store) Import(r io.Reader) ([]models.Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var list []models.Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		var single models.Template
		if err2 := yaml.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		list = []models.Template{single}
	}

	saved := make([]models.Template, 0, len(list))
	for _, t := range list {
		st, err := s.Save(t)
		if err != nil {
			return saved, fmt.Errorf("template %q: %w", t.Name, err)
		}
		saved = append(saved, st)
	}
	return saved, nil
}

// load must be called with the lock held
func (s *Store) load() []models.Template {
	raw, err := s.kv.GetItem(Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("Error loading templates")
		}
		return []models.Template{}
	}

	var list []models.Template
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Warn().Err(err).Msg("Malformed templates, treating as empty")
		return []models.Template{}
	}
	if list == nil {
		list = []models.Template{}
	}
	return list
}

func (s *Store) persist(list []models.Template) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to serialize templates: %w", err)
	}
	if err := s.kv.SetItem(Key, string(data)); err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	return nil
}
