// Package settings loads and persists user-configurable application settings.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// Key is the storage key settings are persisted under
const Key = "appSettings"

// Appearance controls terminal presentation
type Appearance struct {
	Theme             string `json:"theme" yaml:"theme" validate:"oneof=light dark system"`
	AnimationsEnabled bool   `json:"animationsEnabled" yaml:"animationsEnabled"`
	CompactMode       bool   `json:"compactMode" yaml:"compactMode"`
}

// Scraping holds request defaults and history behavior
type Scraping struct {
	DefaultDelay     int  `json:"defaultDelay" yaml:"defaultDelay" validate:"min=0,max=60000"`
	DefaultMaxDepth  int  `json:"defaultMaxDepth" yaml:"defaultMaxDepth" validate:"min=1,max=5"`
	RespectRobotsTxt bool `json:"respectRobotsTxt" yaml:"respectRobotsTxt"`
	AutoSaveHistory  bool `json:"autoSaveHistory" yaml:"autoSaveHistory"`
	HistoryLimit     int  `json:"historyLimit" yaml:"historyLimit" validate:"min=1,max=100"`
}

// Notifications controls completion and error messages
type Notifications struct {
	ScrapeComplete     bool `json:"scrapeComplete" yaml:"scrapeComplete"`
	ErrorNotifications bool `json:"errorNotifications" yaml:"errorNotifications"`
	SoundEnabled       bool `json:"soundEnabled" yaml:"soundEnabled"`
}

// AppSettings is the full settings document
type AppSettings struct {
	Appearance    Appearance    `json:"appearance" yaml:"appearance"`
	Scraping      Scraping      `json:"scraping" yaml:"scraping"`
	Notifications Notifications `json:"notifications" yaml:"notifications"`
}

// Defaults returns the settings used when nothing valid is stored
func Defaults() AppSettings {
	return AppSettings{
		Appearance: Appearance{
			Theme:             "system",
			AnimationsEnabled: true,
			CompactMode:       false,
		},
		Scraping: Scraping{
			DefaultDelay:     500,
			DefaultMaxDepth:  1,
			RespectRobotsTxt: true,
			AutoSaveHistory:  true,
			HistoryLimit:     10,
		},
		Notifications: Notifications{
			ScrapeComplete:     true,
			ErrorNotifications: true,
			SoundEnabled:       false,
		},
	}
}

// DefaultOptions derives request options from the scraping defaults
func (s AppSettings) DefaultOptions() models.ScrapeOptions {
	return models.ScrapeOptions{
		IncludeHTML:      models.Bool(false),
		IncludeText:      models.Bool(true),
		MaxDepth:         models.Int(s.Scraping.DefaultMaxDepth),
		RequestDelay:     models.Int(s.Scraping.DefaultDelay),
		FollowLinks:      models.Bool(false),
		RespectRobotsTxt: models.Bool(s.Scraping.RespectRobotsTxt),
	}
}

// ApplyDefaults fills every unset option from the scraping defaults.
// Options the caller set explicitly, including false and 0, are kept.
func (s AppSettings) ApplyDefaults(opts models.ScrapeOptions) (models.ScrapeOptions, error) {
	merged := opts
	if err := mergo.Merge(&merged, s.DefaultOptions(), mergo.WithoutDereference); err != nil {
		return opts, fmt.Errorf("failed to apply option defaults: %w", err)
	}
	return merged, nil
}

// Store reads and writes AppSettings through a storage backend
type Store struct {
	kv       storage.Storage
	validate *validator.Validate
	mu       sync.Mutex
}

// New creates a settings store over kv
func New(kv storage.Storage) *Store {
	return &Store{
		kv:       kv,
		validate: validator.New(),
	}
}

// Validate checks value ranges of s
func (st *Store) Validate(s AppSettings) error {
	if err := st.validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Load returns the persisted settings layered over Defaults. Absent, malformed
// or out-of-range data yields Defaults.
func (st *Store) Load() AppSettings {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.load()
}

func (st *Store) load() AppSettings {
	raw, err := st.kv.GetItem(Key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("Error loading settings")
		}
		return Defaults()
	}

	// Decoding over the defaults keeps fields missing from older documents.
	s := Defaults()
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		log.Warn().Err(err).Msg("Malformed settings, using defaults")
		return Defaults()
	}
	if err := st.Validate(s); err != nil {
		log.Warn().Err(err).Msg("Stored settings out of range, using defaults")
		return Defaults()
	}
	return s
}

// Save validates and persists s
func (st *Store) Save(s AppSettings) error {
	if err := st.Validate(s); err != nil {
		return err
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.kv.SetItem(Key, string(data)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Debug().Msg("Settings saved")
	return nil
}

// Reset removes persisted settings so Defaults apply again
func (st *Store) Reset() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.kv.RemoveItem(Key); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	return nil
}

// HasChanges reports whether s differs from what is persisted (or from Defaults).
func (st *Store) HasChanges(s AppSettings) bool {
	return !reflect.DeepEqual(st.Load(), s)
}

// Set updates a single dotted key (for example "scraping.historyLimit") from its
// string form, validates the result and persists it.
func (st *Store) Set(path, value string) (AppSettings, error) {
	current := st.Load()

	doc, err := toMap(current)
	if err != nil {
		return current, err
	}

	parts := strings.Split(path, ".")
	if len(parts) != 2 {
		return current, fmt.Errorf("setting key must look like section.name, got %q", path)
	}
	section, ok := doc[parts[0]].(map[string]any)
	if !ok {
		return current, fmt.Errorf("unknown settings section %q", parts[0])
	}
	old, ok := section[parts[1]]
	if !ok {
		return current, fmt.Errorf("unknown setting %q", path)
	}

	parsed, err := parseLike(old, value)
	if err != nil {
		return current, fmt.Errorf("setting %s: %w", path, err)
	}
	section[parts[1]] = parsed

	raw, err := json.Marshal(doc)
	if err != nil {
		return current, err
	}
	updated := Defaults()
	if err := json.Unmarshal(raw, &updated); err != nil {
		return current, err
	}
	if err := st.Save(updated); err != nil {
		return current, err
	}
	return updated, nil
}

// Keys lists every settable dotted key
func Keys() []string {
	doc, _ := toMap(Defaults())
	var keys []string
	for _, section := range []string{"appearance", "scraping", "notifications"} {
		fields, _ := doc[section].(map[string]any)
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			keys = append(keys, section+"."+name)
		}
	}
	return keys
}

func toMap(s AppSettings) (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseLike converts value to the JSON type of old
func parseLike(old any, value string) (any, error) {
	switch old.(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	case float64:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		return n, nil
	default:
		return value, nil
	}
}

// Value returns the setting at a dotted key such as "scraping.historyLimit"
func (s AppSettings) Value(path string) (any, error) {
	doc, err := toMap(s)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(path, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("setting key must look like section.name, got %q", path)
	}
	section, ok := doc[parts[0]].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unknown settings section %q", parts[0])
	}
	v, ok := section[parts[1]]
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", path)
	}
	return v, nil
}
