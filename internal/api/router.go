// Package api provides the HTTP API for the AQI Map service.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aqimap/aqimap/internal/api/handler"
	"github.com/aqimap/aqimap/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version       string
	BuildTime     string
	Logger        zerolog.Logger
	Metrics       *middleware.Metrics
	LookupService handler.LookupService
	CORSOrigins   []string
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)      // Generate/propagate request ID first
	r.Use(middleware.Tracing())      // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	corsOrigins := cfg.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	aqiHandler := handler.NewAQIHandler(cfg.LookupService)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", opsHandler.Root)

		// Ops endpoints
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// AQI lookup endpoints
		r.Route("/aqi", func(r chi.Router) {
			r.Get("/city", aqiHandler.GetByCity)
			r.Get("/geo", aqiHandler.GetByGeo)
			r.Get("/bounds", aqiHandler.GetByBounds)
			r.Get("/search", aqiHandler.Search)
		})
	})

	return r
}
