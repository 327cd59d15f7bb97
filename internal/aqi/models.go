// Package aqi provides air quality lookups against the WAQI upstream,
// normalization of its payload shapes, and response caching.
package aqi

import (
	"errors"
	"fmt"
)

// AQIUnknown is the sentinel for a missing or unreported AQI value.
// Upstream reports these as the literal string "-".
const AQIUnknown = -1

// ErrNotFound indicates a well-formed query for which no data exists,
// such as an unknown city or a location with no reporting station.
var ErrNotFound = errors.New("no air quality data for query")

// TransportError indicates the upstream could not be reached at all
// (network failure or timeout). Surfaced to clients as 503.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("waqi unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError indicates the upstream responded but flagged its own
// failure via the response envelope. Surfaced to clients as 400 with the
// provider's message embedded.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "waqi error: " + e.Message
}

// NormalizationError indicates an upstream payload whose shape did not
// match any known form. Treated as an internal error, never cached.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return "unexpected waqi payload: " + e.Reason
}

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64
	Lng float64
}

// StationReading is one point-in-time AQI reading at one monitoring
// station, produced by normalizing a single-station feed payload.
// AQI is a non-negative integer or AQIUnknown; a raw upstream string
// never reaches this record.
type StationReading struct {
	AQI               int
	StationIndex      int
	CityName          string
	DominantPollutant string
	Timestamp         string
	StationName       string
	Lat               float64
	Lon               float64
	Pollutants        map[string]any
	URL               string
}

// StationSummary is a lightweight station record for map-bounds listings.
// Only stations with a strictly positive integer AQI are ever summarized.
type StationSummary struct {
	UID  int
	Name string
	Lat  float64
	Lon  float64
	AQI  int
	URL  string
}

// SearchHit is a station search result. AQI is deliberately left in its
// raw upstream form (numeric string or "-"): search results are
// advisory, not authoritative readings.
type SearchHit struct {
	UID  int
	Name string
	AQI  string
	Time string
	Lat  float64
	Lon  float64
}
