package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/pkg/models"
)

func TestLoad_DefaultsWhenAbsent(t *testing.T) {
	st := New(storage.NewMemoryStore(0))
	assert.Equal(t, Defaults(), st.Load())
	assert.False(t, st.HasChanges(Defaults()))
}

func TestLoad_MalformedFallsBackToDefaults(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	require.NoError(t, kv.SetItem(Key, "{{{"))
	assert.Equal(t, Defaults(), New(kv).Load())
}

func TestLoad_OutOfRangeFallsBackToDefaults(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	require.NoError(t, kv.SetItem(Key, `{"scraping":{"historyLimit":0}}`))
	assert.Equal(t, Defaults(), New(kv).Load())
}

func TestLoad_PartialDocumentKeepsDefaults(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	require.NoError(t, kv.SetItem(Key, `{"appearance":{"theme":"dark","animationsEnabled":false}}`))

	s := New(kv).Load()
	assert.Equal(t, "dark", s.Appearance.Theme)
	assert.False(t, s.Appearance.AnimationsEnabled)
	assert.Equal(t, 10, s.Scraping.HistoryLimit)
	assert.True(t, s.Notifications.ScrapeComplete)
}

func TestSaveAndReset(t *testing.T) {
	st := New(storage.NewMemoryStore(0))

	s := Defaults()
	s.Scraping.HistoryLimit = 20
	s.Appearance.CompactMode = true
	require.NoError(t, st.Save(s))
	assert.Equal(t, s, st.Load())
	assert.True(t, st.HasChanges(Defaults()))

	require.NoError(t, st.Reset())
	assert.Equal(t, Defaults(), st.Load())
}

func TestSave_RejectsInvalid(t *testing.T) {
	st := New(storage.NewMemoryStore(0))

	s := Defaults()
	s.Appearance.Theme = "neon"
	assert.Error(t, st.Save(s))

	s = Defaults()
	s.Scraping.DefaultMaxDepth = 9
	assert.Error(t, st.Save(s))
}

func TestSet(t *testing.T) {
	st := New(storage.NewMemoryStore(0))

	s, err := st.Set("scraping.historyLimit", "20")
	require.NoError(t, err)
	assert.Equal(t, 20, s.Scraping.HistoryLimit)
	assert.Equal(t, 20, st.Load().Scraping.HistoryLimit)

	s, err = st.Set("notifications.soundEnabled", "true")
	require.NoError(t, err)
	assert.True(t, s.Notifications.SoundEnabled)

	s, err = st.Set("appearance.theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "light", s.Appearance.Theme)

	_, err = st.Set("appearance.theme", "neon")
	assert.Error(t, err)
	_, err = st.Set("scraping.historyLimit", "many")
	assert.Error(t, err)
	_, err = st.Set("scraping.unknown", "1")
	assert.Error(t, err)
	_, err = st.Set("historyLimit", "1")
	assert.Error(t, err)

	// Failed sets leave the stored document untouched.
	assert.Equal(t, "light", st.Load().Appearance.Theme)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "appearance.theme")
	assert.Contains(t, keys, "scraping.historyLimit")
	assert.Contains(t, keys, "notifications.soundEnabled")
	assert.Len(t, keys, 11)
}

func TestApplyDefaults(t *testing.T) {
	s := Defaults()
	s.Scraping.DefaultMaxDepth = 3

	opts, err := s.ApplyDefaults(models.ScrapeOptions{
		IncludeHTML:      models.Bool(true),
		RespectRobotsTxt: models.Bool(false),
	})
	require.NoError(t, err)

	assert.True(t, *opts.IncludeHTML)
	assert.False(t, *opts.RespectRobotsTxt, "explicit false must survive")
	assert.Equal(t, 3, *opts.MaxDepth)
	assert.Equal(t, 500, *opts.RequestDelay)
	assert.True(t, *opts.IncludeText)
}

func TestValue(t *testing.T) {
	s := Defaults()

	v, err := s.Value("scraping.historyLimit")
	require.NoError(t, err)
	assert.EqualValues(t, 10, v)

	v, err = s.Value("appearance.theme")
	require.NoError(t, err)
	assert.Equal(t, "system", v)

	_, err = s.Value("scraping")
	assert.Error(t, err)
	_, err = s.Value("scraping.nope")
	assert.Error(t, err)
	_, err = s.Value("nope.theme")
	assert.Error(t, err)
}
