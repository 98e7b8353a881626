package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	Quiet    bool

	// Storage
	Storage        string
	DataDir        string
	StorageQuota   int64
	KeyringService string
	HistoryLimit   int

	// Mock engine
	MockDelay     time.Duration
	FailureRate   float64
	MinItems      int
	MaxItems      int
	Seed          uint64
	ScrapeTimeout time.Duration

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// RetryBackoff is the first wait before resubmitting a failed scrape
	RetryBackoff time.Duration

	// ConfigFile is the file that was read, if any
	ConfigFile string
}

// Load builds a Config by combining defaults, an optional config file, environment variables, and CLI flags.
// Caller should pass the executing *cobra.Command so flags can be read; nil skips flags.
func Load(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cmd != nil {
		for _, key := range flagKeys {
			if f := cmd.Flags().Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config must exist; the default search path is optional
		if !errors.As(err, &notFound) || v.GetString("config") != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		LogLevel:       v.GetString("log-level"),
		JSONLog:        v.GetBool("json"),
		Quiet:          v.GetBool("quiet"),
		Storage:        strings.ToLower(v.GetString("storage")),
		DataDir:        v.GetString("data-dir"),
		StorageQuota:   v.GetInt64("storage-quota"),
		KeyringService: v.GetString("keyring-service"),
		HistoryLimit:   v.GetInt("history-limit"),
		MockDelay:      v.GetDuration("delay"),
		FailureRate:    v.GetFloat64("failure-rate"),
		MinItems:       v.GetInt("min-items"),
		MaxItems:       v.GetInt("max-items"),
		Seed:           v.GetUint64("seed"),
		ScrapeTimeout:  v.GetDuration("timeout"),
		RateLimitRPS:   v.GetFloat64("rate-limit"),
		RateLimitBurst: v.GetInt("rate-burst"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		ConfigFile:     v.ConfigFileUsed(),
	}
	if v.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("json", DefaultJSONLog)
	v.SetDefault("storage", DefaultStorage)
	v.SetDefault("storage-quota", DefaultStorageQuota)
	v.SetDefault("keyring-service", DefaultKeyringService)
	v.SetDefault("history-limit", DefaultHistoryLimit)
	v.SetDefault("delay", DefaultMockDelay)
	v.SetDefault("failure-rate", DefaultFailureRate)
	v.SetDefault("min-items", DefaultMinItems)
	v.SetDefault("max-items", DefaultMaxItems)
	v.SetDefault("seed", DefaultSeed)
	v.SetDefault("timeout", DefaultScrapeTimeout)
	v.SetDefault("rate-limit", DefaultRateLimitRPS)
	v.SetDefault("rate-burst", DefaultRateLimitBurst)
	v.SetDefault("retry-backoff", DefaultRetryBackoff)
}
