package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "DB_PATH", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_PRETTY",
		"EXCHANGE_BASE_URL", "EXCHANGE_TIMEOUT", "REFERENCE_CURRENCY", "SAMPLER_SCHEDULE",
		"SNAPSHOT_MIN_INTERVAL", "HISTORY_RETENTION_DAYS", "PRUNE_SCHEDULE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:5001", cfg.Server.Addr)
	assert.Equal(t, "./data/portfolio_history.db", cfg.Database.Path)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "https://testnet.binance.vision", cfg.Exchange.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Exchange.Timeout)
	assert.Equal(t, "USDT", cfg.History.ReferenceCurrency)
	assert.Equal(t, "@every 5m", cfg.History.SamplerSchedule)
	assert.Equal(t, time.Minute, cfg.History.MinInterval)
	assert.Equal(t, 365, cfg.History.RetentionDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("EXCHANGE_BASE_URL", "https://api.binance.com/")
	t.Setenv("REFERENCE_CURRENCY", "busd")
	t.Setenv("SNAPSHOT_MIN_INTERVAL", "0s")
	t.Setenv("HISTORY_RETENTION_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "https://api.binance.com", cfg.Exchange.BaseURL)
	assert.Equal(t, "BUSD", cfg.History.ReferenceCurrency)
	assert.Equal(t, time.Duration(0), cfg.History.MinInterval)
	assert.Equal(t, 0, cfg.History.RetentionDays)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("EXCHANGE_TIMEOUT", "ten seconds")
		_, err := Load()
		assert.ErrorContains(t, err, "EXCHANGE_TIMEOUT")
	})

	t.Run("negative retention", func(t *testing.T) {
		t.Setenv("HISTORY_RETENTION_DAYS", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}
