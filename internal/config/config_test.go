package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cache", cfg.Cache.Dir)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Browser.Static)
	assert.Equal(t, 3, cfg.Navigate.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Navigate.BackoffBase, 0.001)
	assert.Equal(t, 60, cfg.Navigate.TimeoutSecs)
	assert.Equal(t, 3, cfg.Navigate.SettleDelaySecs)
	assert.Equal(t, 5000, cfg.Validation.MinPerPerson)
	assert.Equal(t, 1000, cfg.Validation.MinDatePrice)
	assert.Equal(t, "data/ota-sources.json", cfg.Data.SourcesFile)
	assert.Equal(t, "data/hotel-areas.yaml", cfg.Data.AreasFile)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.InDelta(t, 0.5, cfg.Batch.RatePerSec, 0.001)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
cache:
  dir: /tmp/travel-cache
  ttl_hours: 6
browser:
  headless: false
log:
  level: debug
  format: console
batch:
  concurrency: 5
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/travel-cache", cfg.Cache.Dir)
	assert.Equal(t, 6, cfg.Cache.TTLHours)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 5, cfg.Batch.Concurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Navigate.MaxRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
cache:
  ttl_hours: 6
log:
  level: debug
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("TRAVEL_CACHE_TTL_HOURS", "12")
	t.Setenv("TRAVEL_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 12, cfg.Cache.TTLHours)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("TRAVEL_BATCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestDerivedDurations(t *testing.T) {
	cfg := CacheConfig{TTLHours: 6}
	assert.Equal(t, 6*time.Hour, cfg.TTL())

	nav := NavigateConfig{MaxRetries: 4, BackoffBase: 1.5, TimeoutSecs: 30, SettleDelaySecs: 2}
	engine := nav.Engine()
	assert.Equal(t, 4, engine.MaxRetries)
	assert.InDelta(t, 1.5, engine.BackoffBase, 0.001)
	assert.Equal(t, 30*time.Second, engine.Timeout)
	assert.Equal(t, 2*time.Second, nav.SettleDelay())
}

func TestValidate_Defaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Bounds(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Navigate.MaxRetries = 0
	cfg.Batch.Concurrency = 100
	cfg.Batch.RatePerSec = 0

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigate.max_retries must be between 1 and 10")
	assert.Contains(t, err.Error(), "batch.concurrency must be between 1 and 20")
	assert.Contains(t, err.Error(), "batch.rate_per_sec must be > 0")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
