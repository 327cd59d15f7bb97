// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the AQI Map API.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Environment name (development, staging, production).
	Environment string

	// WAQIToken authenticates every upstream request (required).
	WAQIToken string

	// WAQIBaseURL overrides the upstream base URL, mainly for tests.
	WAQIBaseURL string

	// CacheTTL is how long successful lookups stay cached.
	CacheTTL time.Duration

	// UpstreamTimeout bounds each WAQI request.
	UpstreamTimeout time.Duration

	// CORSOrigins are the allowed CORS origins.
	CORSOrigins []string

	// OTLPEndpoint receives traces and metrics when telemetry is enabled.
	OTLPEndpoint string

	// TelemetryEnabled switches OpenTelemetry export on.
	TelemetryEnabled bool
}

// Load reads configuration from the environment, consulting a .env file
// when one exists.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getenvDefault("APP_PORT", "8080"),
		Environment:      getenvDefault("APP_ENV", "development"),
		WAQIToken:        os.Getenv("WAQI_API_TOKEN"),
		WAQIBaseURL:      os.Getenv("WAQI_BASE_URL"),
		OTLPEndpoint:     getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}

	if cfg.WAQIToken == "" {
		return nil, fmt.Errorf("WAQI_API_TOKEN is required")
	}

	cacheTTL, err := getenvDuration("CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = cacheTTL

	timeout, err := getenvDuration("UPSTREAM_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
	}
	cfg.UpstreamTimeout = timeout

	cfg.CORSOrigins = splitOrigins(getenvDefault("CORS_ORIGINS", "*"))

	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
