package aqi

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/aqimap/aqimap/internal/aqi"

// Metrics holds OpenTelemetry instruments for upstream lookups and cache
// effectiveness.
type Metrics struct {
	lookupDuration metric.Float64Histogram
	lookupTotal    metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
}

// NewMetrics creates the lookup metrics instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	lookupDuration, err := meter.Float64Histogram(
		"aqi.lookup.duration",
		metric.WithDescription("Duration of upstream AQI lookups in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	lookupTotal, err := meter.Int64Counter(
		"aqi.lookup.total",
		metric.WithDescription("Total number of upstream AQI lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"aqi.cache.hit",
		metric.WithDescription("Number of lookups served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"aqi.cache.miss",
		metric.WithDescription("Number of lookups that missed the cache"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		lookupDuration: lookupDuration,
		lookupTotal:    lookupTotal,
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
	}, nil
}

// recordLookup records one upstream fetch.
func (m *Metrics) recordLookup(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("aqi.operation", operation),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Background context: metrics must survive request cancellation.
	ctx := context.Background()
	m.lookupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.lookupTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// recordCacheHit records a lookup served from cache.
func (m *Metrics) recordCacheHit(operation string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("aqi.operation", operation),
	))
}

// recordCacheMiss records a lookup that fell through to upstream.
func (m *Metrics) recordCacheMiss(operation string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("aqi.operation", operation),
	))
}
