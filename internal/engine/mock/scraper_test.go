package mock

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/scrapedeck/internal/history"
	"github.com/law-makers/scrapedeck/internal/ratelimit"
	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// fixedSource always rolls the same failure value and item count
type fixedSource struct {
	roll  float64
	count int
}

func (f fixedSource) Float64() float64 { return f.roll }
func (f fixedSource) IntN(n int) int {
	if f.count >= n {
		return n - 1
	}
	return f.count
}

type panicSource struct{}

func (panicSource) Float64() float64 { return 0.99 }
func (panicSource) IntN(int) int     { panic("entropy exhausted") }

type silentPanicSource struct{}

func (silentPanicSource) Float64() float64 { return 0.99 }
func (silentPanicSource) IntN(int) int     { panic("") }

type failingRecorder struct{}

func (failingRecorder) Add(models.ScrapeResult) error { return storage.ErrQuotaExceeded }

func instant() Config {
	return Config{Delay: 0, FailureRate: 0, MinItems: DefaultMinItems, MaxItems: DefaultMaxItems}
}

func titlesRequest() models.ScrapeRequest {
	return models.ScrapeRequest{
		URL:      "https://example.com",
		Patterns: []models.PatternSpec{{Name: "titles", Type: models.PatternCSS, Selector: "h2"}},
	}
}

func TestScrape_TitlesScenario(t *testing.T) {
	s := New(instant(), nil, nil, NewSource(42))

	r := s.Scrape(context.Background(), titlesRequest())

	require.Equal(t, models.StatusSuccess, r.Status)
	assert.Equal(t, "https://example.com", r.URL)
	assert.Empty(t, r.Message)
	assert.False(t, r.Timestamp.IsZero())
	require.Len(t, r.Data, 1)

	g := r.Data[0]
	assert.Equal(t, "titles", g.Pattern)
	assert.Equal(t, models.PatternCSS, g.Type)
	assert.Equal(t, "h2", g.Selector)
	require.GreaterOrEqual(t, len(g.Items), 1)
	require.LessOrEqual(t, len(g.Items), 10)

	for i, it := range g.Items {
		el, ok := it.(*models.ElementItem)
		require.True(t, ok, "css items are element items")
		assert.Equal(t, "item-"+itoa(i), el.ID)
		assert.Equal(t, "Sample text for titles #"+itoa(i+1), el.Text)
		assert.Empty(t, el.HTML, "html only when requested")
		if i%2 == 0 {
			require.NotNil(t, el.Href)
			assert.Equal(t, "https://example.com/item-"+itoa(i), *el.Href)
		} else {
			assert.Nil(t, el.Href)
		}
	}
}

func TestScrape_GroupPerPatternInOrder(t *testing.T) {
	s := New(instant(), nil, nil, fixedSource{roll: 0.5, count: 2})
	req := models.ScrapeRequest{
		URL: "https://example.com/shop",
		Patterns: []models.PatternSpec{
			{Name: "links", Type: models.PatternXPath, Selector: "//a"},
			{Name: "emails", Type: models.PatternRegex, Selector: `\w+@\w+`},
			{Name: "config", Type: models.PatternJSON, Selector: "$.data"},
			{Name: "misc", Type: models.PatternAuto, Selector: ""},
		},
		Options: models.ScrapeOptions{IncludeHTML: models.Bool(true)},
	}

	r := s.Scrape(context.Background(), req)
	require.True(t, r.OK())
	require.Len(t, r.Data, 4)

	for i, p := range req.Patterns {
		assert.Equal(t, p.Name, r.Data[i].Pattern)
		assert.Equal(t, p.Type, r.Data[i].Type)
		assert.Equal(t, p.Selector, r.Data[i].Selector)
		assert.Len(t, r.Data[i].Items, 3)
	}

	el := r.Data[0].Items[0].(*models.ElementItem)
	assert.Equal(t, `<div class="sample">Sample HTML for links #1</div>`, el.HTML)

	m := r.Data[1].Items[1].(*models.MatchItem)
	assert.Equal(t, "Match 2 for emails", m.Match)
	assert.Equal(t, []string{"group1-1", "group2-1"}, m.Groups)

	v := r.Data[2].Items[2].(*models.ValueItem)
	assert.Equal(t, "value-2", v.Value.Key)
	assert.Equal(t, "nested-2", v.Value.Nested.Data)

	c := r.Data[3].Items[0].(*models.ContentItem)
	assert.Equal(t, "Content for misc #1", c.Content)
}

func TestScrape_SimulatedFailure(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	hist := history.New(kv, history.DefaultLimit)
	cfg := instant()
	cfg.FailureRate = 0.1
	s := New(cfg, hist, nil, fixedSource{roll: 0.05})

	r := s.Scrape(context.Background(), titlesRequest())

	assert.Equal(t, models.StatusError, r.Status)
	assert.Equal(t, "Network error or server refused the connection", r.Message)
	assert.NotNil(t, r.Data)
	assert.Empty(t, r.Data)
	assert.Empty(t, hist.GetAll(), "failures are not persisted")
}

func TestScrape_FailureRateIsRoughlyTenPercent(t *testing.T) {
	cfg := instant()
	cfg.FailureRate = DefaultFailureRate
	s := New(cfg, nil, nil, NewSource(7))

	const runs = 1000
	failures := 0
	for i := 0; i < runs; i++ {
		if !s.Scrape(context.Background(), titlesRequest()).OK() {
			failures++
		}
	}
	assert.Greater(t, failures, 40)
	assert.Less(t, failures, 170)
}

func TestScrape_ItemCountWithinBounds(t *testing.T) {
	s := New(instant(), nil, nil, NewSource(99))
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		n := len(s.Scrape(context.Background(), titlesRequest()).Data[0].Items)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 10)
		seen[n] = true
	}
	assert.True(t, seen[1] && seen[10], "both bounds are reachable")
}

func TestScrape_PersistsToHistory(t *testing.T) {
	hist := history.New(storage.NewMemoryStore(0), history.DefaultLimit)
	s := New(instant(), hist, nil, NewSource(1))

	r := s.Scrape(context.Background(), titlesRequest())
	require.True(t, r.OK())

	all := hist.GetAll()
	require.Len(t, all, 1)
	if diff := cmp.Diff(r, all[0]); diff != "" {
		t.Errorf("history entry differs from returned result (-want +got):\n%s", diff)
	}
}

func TestScrape_HistoryCapped(t *testing.T) {
	hist := history.New(storage.NewMemoryStore(0), history.DefaultLimit)
	s := New(instant(), hist, nil, NewSource(3))

	var last models.ScrapeResult
	for i := 0; i < 12; i++ {
		req := titlesRequest()
		req.URL = "https://example.com/page-" + itoa(i)
		last = s.Scrape(context.Background(), req)
	}

	all := hist.GetAll()
	require.Len(t, all, 10)
	assert.Equal(t, last.URL, all[0].URL)
	assert.Equal(t, "https://example.com/page-2", all[9].URL)
}

func TestScrape_HistoryFailureDoesNotChangeResult(t *testing.T) {
	s := New(instant(), failingRecorder{}, nil, NewSource(5))
	r := s.Scrape(context.Background(), titlesRequest())
	assert.True(t, r.OK())
	assert.NotEmpty(t, r.Data)
}

func TestScrape_PanicBecomesErrorResult(t *testing.T) {
	s := New(instant(), nil, nil, panicSource{})
	r := s.Scrape(context.Background(), titlesRequest())

	assert.Equal(t, models.StatusError, r.Status)
	assert.Equal(t, "entropy exhausted", r.Message)
	assert.Empty(t, r.Data)
}

func TestScrape_EmptyPanicStillHasMessage(t *testing.T) {
	s := New(instant(), nil, nil, silentPanicSource{})
	r := s.Scrape(context.Background(), titlesRequest())

	assert.Equal(t, models.StatusError, r.Status)
	assert.Equal(t, internalErrorMessage, r.Message)
	assert.Empty(t, r.Data)
}

func TestScrape_CancelDuringDelay(t *testing.T) {
	cfg := instant()
	cfg.Delay = 10 * time.Second
	hist := history.New(storage.NewMemoryStore(0), history.DefaultLimit)
	s := New(cfg, hist, nil, NewSource(1))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	r := s.Scrape(ctx, titlesRequest())

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, models.StatusError, r.Status)
	assert.Equal(t, context.Canceled.Error(), r.Message)
	assert.Empty(t, hist.GetAll())
}

func TestScrape_WaitsOnRateLimiter(t *testing.T) {
	limiter := ratelimit.NewDomainLimiter(0.001, 1)
	s := New(instant(), nil, limiter, NewSource(1))

	require.True(t, s.Scrape(context.Background(), titlesRequest()).OK())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	r := s.Scrape(ctx, titlesRequest())
	assert.Equal(t, models.StatusError, r.Status)
	assert.NotEmpty(t, r.Message)
}

func TestScrape_Concurrent(t *testing.T) {
	hist := history.New(storage.NewMemoryStore(0), 100)
	s := New(instant(), hist, nil, NewSource(11))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Scrape(context.Background(), titlesRequest())
		}()
	}
	wg.Wait()
	assert.Len(t, hist.GetAll(), 20)
}

func TestConfig_Normalized(t *testing.T) {
	c := Config{Delay: -time.Second, FailureRate: 3, MinItems: 0, MaxItems: -4}.normalized()
	assert.Equal(t, time.Duration(0), c.Delay)
	assert.Equal(t, 1.0, c.FailureRate)
	assert.Equal(t, 1, c.MinItems)
	assert.Equal(t, 1, c.MaxItems)
}

func TestName(t *testing.T) {
	assert.Equal(t, "MockScraper", New(instant(), nil, nil, nil).Name())
}

func itoa(i int) string { return strconv.Itoa(i) }
