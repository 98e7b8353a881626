// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/scrapedeck/internal/config"
	"github.com/law-makers/scrapedeck/internal/engine"
	"github.com/law-makers/scrapedeck/internal/engine/mock"
	"github.com/law-makers/scrapedeck/internal/history"
	"github.com/law-makers/scrapedeck/internal/ratelimit"
	"github.com/law-makers/scrapedeck/internal/retry"
	"github.com/law-makers/scrapedeck/internal/settings"
	"github.com/law-makers/scrapedeck/internal/storage"
	"github.com/law-makers/scrapedeck/internal/templates"
	"github.com/law-makers/scrapedeck/pkg/models"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Storage     storage.Storage
	Settings    *settings.Store
	History     *history.Store
	Templates   *templates.Store
	RateLimiter ratelimit.RateLimiter
	Scraper     engine.Scraper
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Opens the configured storage backend
//   - Creates the settings, history and template stores over it
//   - Creates the rate limiter for per-host pacing
//   - Creates the mock scraper wired to history
//
// If any step fails, an error is returned and no resources are left open.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := setupLogger(cfg)

	kv, err := storage.Open(storage.Options{
		Backend:  cfg.Storage,
		Dir:      cfg.DataDir,
		MaxBytes: cfg.StorageQuota,
		Service:  cfg.KeyringService,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage, err)
	}
	logger.Debug().Str("backend", cfg.Storage).Msg("Storage initialized")

	return newWithStorage(cfg, logger, kv), nil
}

// NewWithStorage creates an Application over an already opened backend.
// The application takes ownership of kv and closes it in Close.
func NewWithStorage(cfg *config.Config, kv storage.Storage) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if kv == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return newWithStorage(cfg, setupLogger(cfg), kv), nil
}

func newWithStorage(cfg *config.Config, logger zerolog.Logger, kv storage.Storage) *Application {
	settingsStore := settings.New(kv)
	current := settingsStore.Load()

	historyStore := history.New(kv, historyLimit(cfg, current))
	logger.Debug().Int("limit", historyStore.Limit()).Msg("History store initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Storage:     kv,
		Settings:    settingsStore,
		History:     historyStore,
		Templates:   templates.New(kv),
		RateLimiter: rateLimiter,
		startTime:   time.Now(),
	}

	app.Scraper = mock.New(mock.Config{
		Delay:       cfg.MockDelay,
		FailureRate: cfg.FailureRate,
		MinItems:    cfg.MinItems,
		MaxItems:    cfg.MaxItems,
	}, autoSaveRecorder{app}, rateLimiter, mock.NewSource(cfg.Seed))

	logger.Debug().
		Dur("delay", cfg.MockDelay).
		Float64("failure_rate", cfg.FailureRate).
		Uint64("seed", cfg.Seed).
		Msg("Scraper initialized")

	logger.Info().Msg("Application initialized successfully")
	return app
}

// setupLogger configures the global zerolog logger from cfg and returns it
func setupLogger(cfg *config.Config) zerolog.Logger {
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) { w.Out = os.Stderr })
	}

	logger := zerolog.New(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return logger
}

// historyLimit prefers an explicit config limit over the persisted setting
func historyLimit(cfg *config.Config, s settings.AppSettings) int {
	if cfg.HistoryLimit > 0 {
		return cfg.HistoryLimit
	}
	return s.Scraping.HistoryLimit
}

// autoSaveRecorder forwards results to history while scraping.autoSaveHistory is on
type autoSaveRecorder struct {
	app *Application
}

func (r autoSaveRecorder) Add(result models.ScrapeResult) error {
	if !r.app.Settings.Load().Scraping.AutoSaveHistory {
		r.app.Logger.Debug().Str("url", result.URL).Msg("History auto-save disabled, result not stored")
		return nil
	}
	return r.app.History.Add(result)
}

// Submit validates req, fills missing options from the settings defaults and runs the scraper.
//
// A validation failure is returned as an error (code VALIDATION) and never reaches the
// scraper. Otherwise the scraper's result is returned as-is, error status included.
func (a *Application) Submit(ctx context.Context, req models.ScrapeRequest) (models.ScrapeResult, error) {
	if err := engine.ValidateRequest(req); err != nil {
		return models.ScrapeResult{}, err
	}

	current := a.Settings.Load()
	opts, err := current.ApplyDefaults(req.Options)
	if err != nil {
		return models.ScrapeResult{}, engine.NewEngineError(engine.ErrCodeInternal, "failed to apply default options", err)
	}
	req.Options = opts
	a.History.SetLimit(historyLimit(a.Config, current))

	if a.Config.ScrapeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.ScrapeTimeout)
		defer cancel()
	}

	a.Logger.Debug().
		Str("url", req.URL).
		Int("patterns", len(req.Patterns)).
		Msg("Submitting scrape")
	return a.Scraper.Scrape(ctx, req), nil
}

// SubmitWithRetry submits req up to attempts times, resubmitting while the scrape fails
// with a simulated network error. Waits between attempts start at Config.RetryBackoff and
// double. The last result is returned; only validation problems come back as errors.
func (a *Application) SubmitWithRetry(ctx context.Context, req models.ScrapeRequest, attempts int) (models.ScrapeResult, error) {
	if attempts <= 1 {
		return a.Submit(ctx, req)
	}

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialBackoff = a.Config.RetryBackoff

	var (
		result models.ScrapeResult
		ran    bool
	)
	err := retry.Do(ctx, cfg, func(attempt int) error {
		r, err := a.Submit(ctx, req)
		if err != nil {
			return err
		}
		result, ran = r, true
		if !r.OK() && r.Message == engine.NetworkFailureMessage {
			a.Logger.Info().Str("url", req.URL).Int("attempt", attempt).Msg("Scrape failed, will retry")
			return engine.NewEngineError(engine.ErrCodeNetworkError, r.Message, engine.ErrNetworkError).WithRetry()
		}
		return nil
	})
	if ran {
		return result, nil
	}
	return result, err
}

// Close gracefully shuts down the application and all its resources.
//
// A context with a timeout should be provided to prevent indefinite blocking.
// Any errors during shutdown are logged and the storage error is returned.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	var err error
	if a.Storage != nil {
		if err = a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing storage")
		}
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return err
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
