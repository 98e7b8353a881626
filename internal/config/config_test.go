package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at an empty temp dir so no stray config file is read
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func newCmd(args ...string) *cobra.Command {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	cmd.SetArgs(args)
	_ = cmd.ParseFlags(args)
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultStorage, cfg.Storage)
	assert.Equal(t, DefaultMockDelay, cfg.MockDelay)
	assert.Equal(t, DefaultFailureRate, cfg.FailureRate)
	assert.Equal(t, DefaultMinItems, cfg.MinItems)
	assert.Equal(t, DefaultMaxItems, cfg.MaxItems)
	assert.Equal(t, 0, cfg.HistoryLimit)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoad_Flags(t *testing.T) {
	isolate(t)

	cmd := newCmd("--verbose", "--storage", "sqlite", "--delay", "0s", "--failure-rate", "0", "--seed", "42", "--max-items", "3")
	cfg, err := Load(cmd)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, time.Duration(0), cfg.MockDelay)
	assert.Equal(t, 0.0, cfg.FailureRate)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 3, cfg.MaxItems)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("SCRAPEDECK_STORAGE", "memory")
	t.Setenv("SCRAPEDECK_HISTORY_LIMIT", "25")

	cfg, err := Load(newCmd())
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 25, cfg.HistoryLimit)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: keyring\nmin-items: 2\nmax-items: 4\n"), 0o600))

	cfg, err := Load(newCmd("--config", path))
	require.NoError(t, err)
	assert.Equal(t, "keyring", cfg.Storage)
	assert.Equal(t, 2, cfg.MinItems)
	assert.Equal(t, 4, cfg.MaxItems)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_DefaultConfigFileInHome(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".scrapedeck.yaml"), []byte("failure-rate: 0.5\n"), 0o600))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.FailureRate)
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	dir := isolate(t)
	_, err := Load(newCmd("--config", filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string][]string{
		"backend":      {"--storage", "s3"},
		"failure rate": {"--failure-rate", "1.5"},
		"items":        {"--min-items", "5", "--max-items", "2"},
		"history":      {"--history-limit", "101"},
		"burst":        {"--rate-burst", "0"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			_, err := Load(newCmd(args...))
			assert.Error(t, err)
		})
	}
}
