// Package handler provides HTTP handlers for the AQI Map API.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/aqimap/aqimap/internal/api/models"
	"github.com/aqimap/aqimap/internal/api/response"
	"github.com/aqimap/aqimap/internal/aqi"
)

// minSearchLength is the shortest accepted search query. Enforced here at
// the boundary; the lookup service itself is permissive.
const minSearchLength = 2

// LookupService is the contract the AQI handlers need from the core.
type LookupService interface {
	LookupByCity(ctx context.Context, name string) (*aqi.StationReading, error)
	LookupByGeo(ctx context.Context, lat, lng float64) (*aqi.StationReading, error)
	LookupByBounds(ctx context.Context, ne, sw aqi.LatLng) ([]aqi.StationSummary, error)
	Search(ctx context.Context, query string) ([]aqi.SearchHit, error)
}

// AQIHandler handles air quality lookup endpoints.
type AQIHandler struct {
	service LookupService
}

// NewAQIHandler creates a new AQIHandler.
func NewAQIHandler(service LookupService) *AQIHandler {
	return &AQIHandler{service: service}
}

// GetByCity handles GET /api/aqi/city?name=.
func (h *AQIHandler) GetByCity(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, r, "missing query parameter", []models.FieldError{
			{Field: "name", Message: "city name is required", Code: "required"},
		})
		return
	}

	reading, err := h.service.LookupByCity(r.Context(), name)
	if err != nil {
		writeLookupError(w, r, err, "City not found or no AQI data available")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationReading(reading))
}

// GetByGeo handles GET /api/aqi/geo?lat=&lng=.
func (h *AQIHandler) GetByGeo(w http.ResponseWriter, r *http.Request) {
	lat, latErr := parseFloatParam(r, "lat")
	lng, lngErr := parseFloatParam(r, "lng")

	var fieldErrs []models.FieldError
	if latErr != nil {
		fieldErrs = append(fieldErrs, *latErr)
	}
	if lngErr != nil {
		fieldErrs = append(fieldErrs, *lngErr)
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", fieldErrs)
		return
	}

	reading, err := h.service.LookupByGeo(r.Context(), lat, lng)
	if err != nil {
		writeLookupError(w, r, err, "No AQI data available for this location")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationReading(reading))
}

// GetByBounds handles GET /api/aqi/bounds?nelat=&nelng=&swlat=&swlng=.
func (h *AQIHandler) GetByBounds(w http.ResponseWriter, r *http.Request) {
	var fieldErrs []models.FieldError
	coords := make(map[string]float64, 4)
	for _, param := range []string{"nelat", "nelng", "swlat", "swlng"} {
		v, fieldErr := parseFloatParam(r, param)
		if fieldErr != nil {
			fieldErrs = append(fieldErrs, *fieldErr)
			continue
		}
		coords[param] = v
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "invalid bounds", fieldErrs)
		return
	}

	ne := aqi.LatLng{Lat: coords["nelat"], Lng: coords["nelng"]}
	sw := aqi.LatLng{Lat: coords["swlat"], Lng: coords["swlng"]}

	stations, err := h.service.LookupByBounds(r.Context(), ne, sw)
	if err != nil {
		writeLookupError(w, r, err, "")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewStationList(stations))
}

// Search handles GET /api/aqi/search?query=.
func (h *AQIHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if utf8.RuneCountInString(query) < minSearchLength {
		response.BadRequest(w, r, "query too short", []models.FieldError{
			{
				Field:   "query",
				Message: fmt.Sprintf("at least %d characters are required", minSearchLength),
				Code:    "min_length",
			},
		})
		return
	}

	hits, err := h.service.Search(r.Context(), query)
	if err != nil {
		writeLookupError(w, r, err, "")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewSearchResults(hits))
}

// writeLookupError maps the core error taxonomy onto HTTP responses:
// not-found is 404, an upstream-flagged failure is 400 carrying the
// provider message, a transport failure is 503, and anything else
// (including payload shape mismatches) is 500.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error, notFoundDetail string) {
	var transportErr *aqi.TransportError
	var upstreamErr *aqi.UpstreamError

	switch {
	case errors.Is(err, aqi.ErrNotFound):
		if notFoundDetail == "" {
			notFoundDetail = "no AQI data available"
		}
		response.NotFound(w, r, notFoundDetail)
	case errors.As(err, &upstreamErr):
		response.UpstreamError(w, r, "WAQI API error: "+upstreamErr.Message)
	case errors.As(err, &transportErr):
		response.ServiceUnavailable(w, r, "failed to fetch AQI data")
	default:
		response.InternalError(w, r, "failed to process AQI data")
	}
}

// parseFloatParam parses a required float query parameter.
func parseFloatParam(r *http.Request, name string) (float64, *models.FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, &models.FieldError{Field: name, Message: name + " is required", Code: "required"}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &models.FieldError{Field: name, Message: name + " must be a number", Code: "invalid"}
	}
	return v, nil
}
