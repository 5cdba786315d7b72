package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, 120*time.Second, cfg.Gemini.Timeout)
	assert.InDelta(t, 0.85, cfg.Lookup.SimilarityThreshold, 1e-9)
	assert.Equal(t, 10, cfg.Lookup.ClaimMinLength)
	assert.Equal(t, 500, cfg.Lookup.ClaimMaxLength)
	assert.False(t, cfg.Lookup.FallbackToDemoOnMiss)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 2, cfg.RateLimit.Anonymous)
	assert.Equal(t, 20, cfg.RateLimit.Authenticated)
	assert.Equal(t, 200, cfg.RateLimit.Enterprise)
	assert.False(t, cfg.Gemini.Live())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://genuverity.com, http://localhost:5173")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ENABLE_REAL_API", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("STORE_TYPE", "Postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, []string{"https://genuverity.com", "http://localhost:5173"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Gemini.Live())
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "postgres", cfg.Store.Type)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_TYPE", "mongo")
	t.Setenv("SIMILARITY_THRESHOLD", "1.5")
	t.Setenv("CLAIM_MIN_LENGTH", "50")
	t.Setenv("CLAIM_MAX_LENGTH", "20")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_TYPE")
	assert.Contains(t, err.Error(), "SIMILARITY_THRESHOLD")
	assert.Contains(t, err.Error(), "claim length")
}
