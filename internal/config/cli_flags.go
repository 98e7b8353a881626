package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress spinners and informational output")
	pf.Bool("json", false, "Emit logs as JSON")
	pf.String("config", "", "Path to configuration file (default $HOME/.scrapedeck.yaml)")

	pf.String("storage", DefaultStorage, "Storage backend: memory, file, keyring, sqlite")
	pf.String("data-dir", "", "Directory for file and sqlite storage (default ~/.scrapedeck)")
	pf.Int("history-limit", DefaultHistoryLimit, "Max history entries kept (0 uses the scraping.historyLimit setting)")

	pf.Duration("delay", DefaultMockDelay, "Simulated scrape latency")
	pf.Float64("failure-rate", DefaultFailureRate, "Probability of a simulated network failure (0..1)")
	pf.Int("min-items", DefaultMinItems, "Minimum items generated per pattern")
	pf.Int("max-items", DefaultMaxItems, "Maximum items generated per pattern")
	pf.Uint64("seed", DefaultSeed, "Random seed for reproducible results (0 = random)")
	pf.Float64("rate-limit", DefaultRateLimitRPS, "Scrapes per second allowed per host (0 disables pacing)")
	pf.Int("rate-burst", DefaultRateLimitBurst, "Burst size of the per-host limiter")
	pf.Duration("timeout", DefaultScrapeTimeout, "Hard timeout for a single scrape")
	pf.Duration("retry-backoff", DefaultRetryBackoff, "Initial wait before retrying a failed scrape (doubles per attempt)")
}

// flagKeys maps viper keys to the flag names bound to them
var flagKeys = []string{
	"verbose", "quiet", "json", "config",
	"storage", "data-dir", "history-limit",
	"delay", "failure-rate", "min-items", "max-items", "seed",
	"rate-limit", "rate-burst", "timeout", "retry-backoff",
}
