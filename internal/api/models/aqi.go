package models

import "github.com/aqimap/aqimap/internal/aqi"

// These DTOs keep the wire shape of the public API stable and decoupled
// from the internal records; field names follow the upstream-facing
// snake_case convention the frontend already consumes.

// StationReading is the response body for city and geo lookups.
type StationReading struct {
	AQI               int            `json:"aqi"`
	Idx               int            `json:"idx"`
	CityName          string         `json:"city_name"`
	DominantPollutant string         `json:"dominant_pollutant,omitempty"`
	Timestamp         string         `json:"timestamp"`
	StationName       string         `json:"station_name"`
	Lat               float64        `json:"lat"`
	Lon               float64        `json:"lon"`
	Pollutants        map[string]any `json:"pollutants,omitempty"`
	URL               string         `json:"url"`
}

// Station is one station entry of a bounds listing.
type Station struct {
	UID  int     `json:"uid"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	AQI  int     `json:"aqi"`
	URL  string  `json:"url"`
}

// StationList is the response body for bounds lookups.
type StationList struct {
	Stations []Station `json:"stations"`
	Count    int       `json:"count"`
}

// SearchResult is one entry of a search response. AQI stays in its raw
// upstream form (numeric string or "-").
type SearchResult struct {
	UID  int     `json:"uid"`
	Name string  `json:"name"`
	AQI  string  `json:"aqi"`
	Time string  `json:"time"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// SearchResults is the response body for search lookups.
type SearchResults struct {
	Results []SearchResult `json:"results"`
}

// NewStationReading converts a domain reading to its response shape.
func NewStationReading(r *aqi.StationReading) StationReading {
	return StationReading{
		AQI:               r.AQI,
		Idx:               r.StationIndex,
		CityName:          r.CityName,
		DominantPollutant: r.DominantPollutant,
		Timestamp:         r.Timestamp,
		StationName:       r.StationName,
		Lat:               r.Lat,
		Lon:               r.Lon,
		Pollutants:        r.Pollutants,
		URL:               r.URL,
	}
}

// NewStationList converts domain summaries to a bounds response.
func NewStationList(summaries []aqi.StationSummary) StationList {
	stations := make([]Station, 0, len(summaries))
	for _, s := range summaries {
		stations = append(stations, Station{
			UID:  s.UID,
			Name: s.Name,
			Lat:  s.Lat,
			Lon:  s.Lon,
			AQI:  s.AQI,
			URL:  s.URL,
		})
	}
	return StationList{Stations: stations, Count: len(stations)}
}

// NewSearchResults converts domain search hits to a search response.
func NewSearchResults(hits []aqi.SearchHit) SearchResults {
	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, SearchResult{
			UID:  h.UID,
			Name: h.Name,
			AQI:  h.AQI,
			Time: h.Time,
			Lat:  h.Lat,
			Lon:  h.Lon,
		})
	}
	return SearchResults{Results: results}
}
