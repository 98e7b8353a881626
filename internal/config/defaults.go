package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultStorage        = "file"
	DefaultKeyringService = "scrapedeck"
	DefaultStorageQuota   = 5 * 1024 * 1024 // 5MB, the usual browser storage quota
	DefaultHistoryLimit   = 0               // 0 defers to scraping.historyLimit in settings
	DefaultMockDelay      = 1500 * time.Millisecond
	DefaultFailureRate    = 0.1
	DefaultMinItems       = 1
	DefaultMaxItems       = 10
	DefaultSeed           = 0
	DefaultRateLimitRPS   = 2.0
	DefaultRateLimitBurst = 3
	DefaultScrapeTimeout  = 30 * time.Second
	DefaultRetryBackoff   = time.Second

	MaxHistoryLimit = 100
	MaxItemsLimit   = 1000

	// EnvPrefix prefixes every environment variable read by Load
	EnvPrefix = "SCRAPEDECK"
	// ConfigName is the base name of the optional config file searched in $HOME and .
	ConfigName = ".scrapedeck"
)
