package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DATABASE_NAME", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("LEDGER_TIMEZONE", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("BALANCE_CACHE_TTL", "")
	t.Setenv("TRANSACTIONS_PAGE_LIMIT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 100, cfg.TransactionsPageLimit)
	assert.Equal(t, 30*time.Second, cfg.BalanceCacheTTL)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DATABASE_NAME", "ledger")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("LEDGER_TIMEZONE", "Europe/Paris")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("BALANCE_CACHE_TTL", "1m")
	t.Setenv("TRANSACTIONS_PAGE_LIMIT", "25")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "Europe/Paris", cfg.Location.String())
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Minute, cfg.BalanceCacheTTL)
	assert.Equal(t, 25, cfg.TransactionsPageLimit)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/ledger?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_Validation(t *testing.T) {
	t.Run("database url required outside tests", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("LEDGER_TIMEZONE", "")

		_, err := load()
		assert.Error(t, err)
	})

	t.Run("database url optional in tests", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("LEDGER_TIMEZONE", "")

		_, err := load()
		assert.NoError(t, err)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost:5432")
		t.Setenv("ENVIRONMENT", "")
		t.Setenv("LEDGER_TIMEZONE", "Mars/Olympus")

		_, err := load()
		assert.Error(t, err)
	})
}
