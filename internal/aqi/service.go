package aqi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aqimap/aqimap/internal/cache"
)

// Provider fetches a raw data payload from the upstream AQI API.
// Implementations attach authentication and classify transport and
// envelope failures; they never interpret the payload shape.
type Provider interface {
	Get(ctx context.Context, path string, params url.Values) (Payload, error)
}

// ServiceConfig holds configuration for the lookup service.
type ServiceConfig struct {
	// Provider is the upstream AQI client (required).
	Provider Provider

	// Cache stores successful results. If nil, a cache with default TTL
	// is created.
	Cache *cache.Cache

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics is optional; when nil no metrics are recorded.
	Metrics *Metrics
}

// Service orchestrates AQI queries: it builds cache keys, consults the
// cache, falls through to the provider on a miss, normalizes the payload
// and populates the cache on success. Only successful results are ever
// cached, so a failing query is retried from scratch on every call.
//
// Two concurrent misses for the same key may both fetch upstream; there
// is no per-key locking. Acceptable for this traffic profile, known gap.
type Service struct {
	provider Provider
	cache    *cache.Cache
	logger   zerolog.Logger
	metrics  *Metrics
}

// NewService creates a new lookup service.
func NewService(cfg ServiceConfig) *Service {
	c := cfg.Cache
	if c == nil {
		c = cache.New(cache.Config{})
	}

	return &Service{
		provider: cfg.Provider,
		cache:    c,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// LookupByCity returns the AQI reading for a city by name.
// Returns ErrNotFound when the upstream has no feed for the name.
func (s *Service) LookupByCity(ctx context.Context, name string) (*StationReading, error) {
	key := "city_" + strings.ToLower(name)
	if reading, ok := s.cachedReading(key, "city"); ok {
		return reading, nil
	}

	payload, err := s.fetch(ctx, "city", "feed/"+url.PathEscape(name)+"/", nil)
	if err != nil {
		return nil, err
	}

	reading, err := NormalizeFeed(payload, FeedOptions{FallbackName: name})
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, reading)
	return reading, nil
}

// LookupByGeo returns the reading of the station nearest to the given
// coordinates. Coordinates are rounded to three decimals for the cache
// key so nearby queries share an entry. Returns ErrNotFound when the
// nearest station reports the unknown-AQI sentinel.
func (s *Service) LookupByGeo(ctx context.Context, lat, lng float64) (*StationReading, error) {
	key := fmt.Sprintf("geo_%.3f_%.3f", lat, lng)
	if reading, ok := s.cachedReading(key, "geo"); ok {
		return reading, nil
	}

	path := fmt.Sprintf("feed/geo:%s;%s/", formatCoord(lat), formatCoord(lng))
	payload, err := s.fetch(ctx, "geo", path, nil)
	if err != nil {
		return nil, err
	}

	reading, err := NormalizeFeed(payload, FeedOptions{
		FallbackName:   "Unknown",
		FallbackCoords: &LatLng{Lat: lat, Lng: lng},
	})
	if err != nil {
		return nil, err
	}

	if reading.AQI == AQIUnknown {
		return nil, ErrNotFound
	}

	s.cache.Set(key, reading)
	return reading, nil
}

// LookupByBounds returns all stations with a valid AQI inside the box
// spanned by the northeast and southwest corners. An empty list is a
// valid, successful (and cacheable) result; there is no not-found case.
func (s *Service) LookupByBounds(ctx context.Context, ne, sw LatLng) ([]StationSummary, error) {
	key := fmt.Sprintf("bounds_%.2f_%.2f_%.2f_%.2f", ne.Lat, ne.Lng, sw.Lat, sw.Lng)
	if v, ok := s.cache.Get(key); ok {
		if stations, valid := v.([]StationSummary); valid {
			s.metrics.recordCacheHit("bounds")
			return stations, nil
		}
	}
	s.metrics.recordCacheMiss("bounds")

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%s,%s,%s,%s",
		formatCoord(sw.Lat), formatCoord(sw.Lng), formatCoord(ne.Lat), formatCoord(ne.Lng)))

	payload, err := s.fetch(ctx, "bounds", "map/bounds/", params)
	if err != nil {
		return nil, err
	}

	stations, err := NormalizeBounds(payload)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, stations)
	return stations, nil
}

// Search returns stations matching the query. Results are never cached:
// for search-as-you-type, freshness matters more than latency. Length
// validation lives at the HTTP boundary; the service is permissive.
func (s *Service) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{}
	params.Set("keyword", query)

	payload, err := s.fetch(ctx, "search", "search/", params)
	if err != nil {
		return nil, err
	}

	return NormalizeSearch(payload)
}

// cachedReading looks up a StationReading, recording hit/miss metrics.
func (s *Service) cachedReading(key, operation string) (*StationReading, bool) {
	if v, ok := s.cache.Get(key); ok {
		if reading, valid := v.(*StationReading); valid {
			s.metrics.recordCacheHit(operation)
			return reading, true
		}
	}
	s.metrics.recordCacheMiss(operation)
	return nil, false
}

// fetch calls the provider and records lookup telemetry.
func (s *Service) fetch(ctx context.Context, operation, path string, params url.Values) (Payload, error) {
	start := time.Now()
	payload, err := s.provider.Get(ctx, path, params)
	s.metrics.recordLookup(operation, time.Since(start), err)

	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("operation", operation).
			Str("path", path).
			Msg("upstream lookup failed")
		return Payload{}, err
	}

	s.logger.Debug().
		Str("operation", operation).
		Str("path", path).
		Dur("duration", time.Since(start)).
		Msg("upstream lookup completed")
	return payload, nil
}

// formatCoord renders a coordinate for upstream request paths without
// trailing zeros, matching the form clients sent it in.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
