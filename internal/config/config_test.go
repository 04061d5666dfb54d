package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.IsProduction())
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.False(t, cfg.TrustProxy)
}

func TestLoadRateLimit(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.True(t, cfg.TrustProxy)

	t.Setenv("TRUST_PROXY", "sometimes")
	_, err = Load()
	assert.Error(t, err)
	t.Setenv("TRUST_PROXY", "")

	t.Setenv("RATE_LIMIT_RPS", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DB_DSN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_TTL", "10m")
	t.Setenv("STORAGE", "sqlite")
	_, err = Load()
	assert.Error(t, err)
}
