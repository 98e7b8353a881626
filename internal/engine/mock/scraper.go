// internal/engine/mock/scraper.go
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/scrapedeck/internal/engine"
	"github.com/law-makers/scrapedeck/internal/ratelimit"
	"github.com/law-makers/scrapedeck/internal/reqctx"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// Defaults of the simulated backend
const (
	DefaultDelay       = 1500 * time.Millisecond
	DefaultFailureRate = 0.1
	DefaultMinItems    = 1
	DefaultMaxItems    = 10
)

// internalErrorMessage stands in for a panic value that prints as nothing
const internalErrorMessage = "internal error"

// Config tunes the simulated backend
type Config struct {
	Delay       time.Duration
	FailureRate float64
	MinItems    int
	MaxItems    int
}

// DefaultConfig returns the stock simulation: 1.5s latency, 10% failures, 1 to 10 items per pattern
func DefaultConfig() Config {
	return Config{
		Delay:       DefaultDelay,
		FailureRate: DefaultFailureRate,
		MinItems:    DefaultMinItems,
		MaxItems:    DefaultMaxItems,
	}
}

func (c Config) normalized() Config {
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.FailureRate < 0 {
		c.FailureRate = 0
	}
	if c.FailureRate > 1 {
		c.FailureRate = 1
	}
	if c.MinItems < 1 {
		c.MinItems = 1
	}
	if c.MaxItems < c.MinItems {
		c.MaxItems = c.MinItems
	}
	return c
}

// Recorder receives every successful result. *history.Store satisfies it.
type Recorder interface {
	Add(result models.ScrapeResult) error
}

// Scraper fabricates placeholder results after an artificial delay.
// It is safe for concurrent use.
type Scraper struct {
	cfg      Config
	recorder Recorder
	limiter  ratelimit.RateLimiter

	mu  sync.Mutex
	rng Source
	now func() time.Time
}

// New creates a mock Scraper. recorder and limiter may be nil; a nil src seeds from the clock.
func New(cfg Config, recorder Recorder, limiter ratelimit.RateLimiter, src Source) *Scraper {
	if src == nil {
		src = NewSource(0)
	}
	return &Scraper{
		cfg:      cfg.normalized(),
		recorder: recorder,
		limiter:  limiter,
		rng:      src,
		now:      engine.Now,
	}
}

// Name returns the name of this scraper
func (s *Scraper) Name() string {
	return "MockScraper"
}

// Config returns the effective configuration
func (s *Scraper) Config() Config {
	return s.cfg
}

// Scrape waits for the host's rate limit and the simulated latency, then either
// fails with a simulated network error or returns one group of placeholder items
// per pattern. Successful results are handed to the recorder before returning.
func (s *Scraper) Scrape(ctx context.Context, req models.ScrapeRequest) (result models.ScrapeResult) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = reqctx.WithRequestContext(ctx, req.URL)
	logger := reqctx.Logger(ctx, log.Logger)

	logger.Debug().
		Int("patterns", len(req.Patterns)).
		Bool("include_html", req.Options.HTMLEnabled()).
		Str("scraper", s.Name()).
		Msg("Starting scrape")

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Scrape panicked")
			msg := fmt.Sprint(r)
			if msg == "" {
				msg = internalErrorMessage
			}
			result = engine.ErrorResult(req.URL, engine.NewEngineError(engine.ErrCodeInternal, msg, nil), s.now)
		}
	}()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, req.URL); err != nil {
			return s.canceled(ctx, req.URL, err)
		}
	}

	if err := sleep(ctx, s.cfg.Delay); err != nil {
		return s.canceled(ctx, req.URL, err)
	}

	if s.float64() < s.cfg.FailureRate {
		logger.Warn().Msg("Simulated network failure")
		err := engine.NewEngineError(engine.ErrCodeNetworkError, engine.NetworkFailureMessage, engine.ErrNetworkError).WithRetry()
		return engine.ErrorResult(req.URL, err, s.now)
	}

	result = models.ScrapeResult{
		Status:    models.StatusSuccess,
		Timestamp: s.now(),
		URL:       req.URL,
		Data:      s.synthesize(req),
	}

	if s.recorder != nil {
		if err := s.recorder.Add(result); err != nil {
			logger.Warn().Err(err).Msg("Failed to save scrape history")
		}
	}

	logger.Debug().
		Int("items", result.ItemCount()).
		Dur("duration", reqctx.GetRequestContext(ctx).Elapsed()).
		Msg("Scrape completed")

	return result
}

func (s *Scraper) synthesize(req models.ScrapeRequest) []models.ScrapeResultGroup {
	includeHTML := req.Options.HTMLEnabled()
	groups := make([]models.ScrapeResultGroup, 0, len(req.Patterns))

	for _, p := range req.Patterns {
		items := make([]models.Item, s.itemCount())
		for i := range items {
			items[i] = placeholderItem(p, i, includeHTML)
		}
		groups = append(groups, models.ScrapeResultGroup{
			Pattern:  p.Name,
			Type:     p.Type,
			Selector: p.Selector,
			Items:    items,
		})
	}
	return groups
}

func (s *Scraper) canceled(ctx context.Context, url string, err error) models.ScrapeResult {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	log.Debug().Err(err).Str("url", url).Msg("Scrape canceled")
	return engine.ErrorResult(url, engine.NewEngineError(engine.ErrCodeCanceled, err.Error(), engine.ErrCanceled), s.now)
}

func (s *Scraper) float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Scraper) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.MinItems + s.rng.IntN(s.cfg.MaxItems-s.cfg.MinItems+1)
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
