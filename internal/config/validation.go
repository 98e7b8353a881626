package config

import (
	"fmt"

	"github.com/law-makers/scrapedeck/internal/storage"
)

func validate(c *Config) error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if !isBackend(c.Storage) {
		return fmt.Errorf("unknown storage backend %q (want one of %v)", c.Storage, storage.Backends())
	}
	if c.StorageQuota <= 0 {
		return fmt.Errorf("storage quota must be > 0")
	}
	if c.HistoryLimit < 0 || c.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("history limit must be between 0 and %d", MaxHistoryLimit)
	}
	if c.MockDelay < 0 {
		return fmt.Errorf("delay must be >= 0")
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1")
	}
	if c.MinItems < 1 {
		return fmt.Errorf("min items must be >= 1")
	}
	if c.MaxItems < c.MinItems || c.MaxItems > MaxItemsLimit {
		return fmt.Errorf("max items must be between min items (%d) and %d", c.MinItems, MaxItemsLimit)
	}
	if c.ScrapeTimeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("rate limit must be >= 0")
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate burst must be >= 1")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff must be >= 0")
	}
	return nil
}

func isBackend(name string) bool {
	for _, b := range storage.Backends() {
		if b == name {
			return true
		}
	}
	return false
}
