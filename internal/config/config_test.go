package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqimap/aqimap/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WAQI_API_TOKEN", "test-token")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "test-token", cfg.WAQIToken)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.TelemetryEnabled)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("WAQI_API_TOKEN", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WAQI_API_TOKEN")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WAQI_API_TOKEN", "test-token")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.True(t, cfg.TelemetryEnabled)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("WAQI_API_TOKEN", "test-token")
	t.Setenv("CACHE_TTL", "soon")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}
