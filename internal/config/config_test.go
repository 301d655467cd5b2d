package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30, cfg.Server.RequestTimeoutSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://www.alphavantage.co", cfg.AlphaVantage.BaseURL)
	assert.Equal(t, 5, cfg.AlphaVantage.RequestsPerMinute)
	assert.Equal(t, "https://newsapi.org", cfg.NewsAPI.BaseURL)
	assert.Equal(t, "en", cfg.NewsAPI.Language)
	assert.Equal(t, "relevancy", cfg.NewsAPI.SortBy)
	assert.Equal(t, "none", cfg.Cache.Driver)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)

	assert.Equal(t, 20, cfg.Scoring.SensationalWeight)
	assert.Equal(t, 25, cfg.Scoring.HistoricalMismatchWeight)
	assert.Equal(t, 20, cfg.Scoring.PartnershipVerificationWeight)
	assert.Equal(t, 10, cfg.Scoring.PressureTacticsWeight)
	assert.Equal(t, 5, cfg.Scoring.LackOfSpecificsWeight)
	assert.Equal(t, 35, cfg.Scoring.MLWeight)
	assert.InDelta(t, 0.6, cfg.Scoring.MLFlagThreshold, 0.0001)
	assert.Equal(t, 5, cfg.Scoring.TopTerms)
	assert.False(t, cfg.Scoring.ConcurrentChecks)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
cache:
  driver: sqlite
  database_url: cache.db
scoring:
  ml: 40
  concurrent_checks: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, "cache.db", cfg.Cache.DatabaseURL)
	assert.Equal(t, 40, cfg.Scoring.MLWeight)
	assert.True(t, cfg.Scoring.ConcurrentChecks)
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Scoring.SensationalWeight)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CREDIBILITY_LOG_LEVEL", "warn")
	t.Setenv("CREDIBILITY_NEWSAPI_KEY", "news-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "news-key", cfg.NewsAPI.Key)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestHasKey(t *testing.T) {
	assert.True(t, HasKey("abc"))
	assert.False(t, HasKey(""))
	assert.False(t, HasKey("   "))
	assert.False(t, HasKey(PlaceholderKey))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		mode    string
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}, mode: "serve"},
		{name: "sqlite needs url", mutate: func(c *Config) { c.Cache.Driver = "sqlite" }, mode: "analyze", wantErr: "cache.database_url is required"},
		{name: "unknown driver", mutate: func(c *Config) { c.Cache.Driver = "redis" }, mode: "analyze", wantErr: "not supported"},
		{name: "negative ttl", mutate: func(c *Config) { c.Cache.TTLHours = -1 }, mode: "analyze", wantErr: "ttl_hours"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, mode: "serve", wantErr: "server.port"},
		{name: "port ignored outside serve", mutate: func(c *Config) { c.Server.Port = 0 }, mode: "analyze"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{Port: 8080, RequestTimeoutSecs: 30},
				Cache:  CacheConfig{Driver: "none", TTLHours: 24},
			}
			tt.mutate(cfg)
			err := cfg.Validate(tt.mode)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
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
