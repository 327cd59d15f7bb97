package aqi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// maxSearchHits bounds how many search results are returned. Upstream can
// return far more; truncating keeps responses small for search-as-you-type.
const maxSearchHits = 10

// feedPayload mirrors the upstream single-station feed shape.
type feedPayload struct {
	AQI         json.RawMessage `json:"aqi"`
	Idx         int             `json:"idx"`
	DominentPol string          `json:"dominentpol"`
	Time        struct {
		ISO string `json:"iso"`
	} `json:"time"`
	City struct {
		Name string    `json:"name"`
		Geo  []float64 `json:"geo"`
		URL  string    `json:"url"`
	} `json:"city"`
	IAQI map[string]any `json:"iaqi"`
}

// boundsStation mirrors one entry of the upstream map-bounds list.
type boundsStation struct {
	UID     int             `json:"uid"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	AQI     json.RawMessage `json:"aqi"`
	Station struct {
		Name string `json:"name"`
	} `json:"station"`
}

// searchEntry mirrors one entry of the upstream search result list.
type searchEntry struct {
	UID     int             `json:"uid"`
	AQI     json.RawMessage `json:"aqi"`
	Time    struct {
		STime string `json:"stime"`
	} `json:"time"`
	Station struct {
		Name string    `json:"name"`
		Geo  []float64 `json:"geo"`
	} `json:"station"`
}

// FeedOptions supplies fallbacks for fields the upstream may omit.
type FeedOptions struct {
	// FallbackName is used as the city name when the feed carries none
	// (the queried city name, or "Unknown" for geo lookups).
	FallbackName string

	// FallbackCoords, when set, replaces missing feed coordinates.
	// The geo lookup passes the queried coordinates here.
	FallbackCoords *LatLng
}

// NormalizeFeed maps a single-station feed payload to a StationReading.
// A message payload means the upstream has no feed for the query and maps
// to ErrNotFound; any other shape mismatch is a NormalizationError.
func NormalizeFeed(p Payload, opts FeedOptions) (*StationReading, error) {
	switch p.Kind {
	case PayloadMessage:
		return nil, ErrNotFound
	case PayloadList:
		return nil, &NormalizationError{Reason: "feed data is a list"}
	}

	var feed feedPayload
	if err := json.Unmarshal(p.Object, &feed); err != nil {
		return nil, &NormalizationError{Reason: fmt.Sprintf("decode feed: %v", err)}
	}

	aqiVal, err := parseFeedAQI(feed.AQI)
	if err != nil {
		return nil, err
	}

	lat, lon := 0.0, 0.0
	if opts.FallbackCoords != nil {
		lat, lon = opts.FallbackCoords.Lat, opts.FallbackCoords.Lng
	}
	if len(feed.City.Geo) >= 2 {
		lat, lon = feed.City.Geo[0], feed.City.Geo[1]
	}

	cityName := feed.City.Name
	if cityName == "" {
		cityName = opts.FallbackName
	}

	return &StationReading{
		AQI:               aqiVal,
		StationIndex:      feed.Idx,
		CityName:          cityName,
		DominantPollutant: feed.DominentPol,
		Timestamp:         feed.Time.ISO,
		StationName:       feed.City.Name,
		Lat:               lat,
		Lon:               lon,
		Pollutants:        feed.IAQI,
		URL:               feed.City.URL,
	}, nil
}

// NormalizeBounds maps a map-bounds payload to station summaries. A station
// is included iff its AQI is present, is not the "-" sentinel, and parses
// to a strictly positive integer; anything else skips that station and
// never fails the whole listing. A message payload (upstream has nothing
// to say for the box) yields an empty list.
func NormalizeBounds(p Payload) ([]StationSummary, error) {
	switch p.Kind {
	case PayloadMessage:
		return []StationSummary{}, nil
	case PayloadObject:
		return nil, &NormalizationError{Reason: "bounds data is not a list"}
	}

	stations := make([]StationSummary, 0, len(p.List))
	for _, raw := range p.List {
		var s boundsStation
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}

		aqiVal, ok := parseStationAQI(s.AQI)
		if !ok || aqiVal <= 0 {
			continue
		}

		stations = append(stations, StationSummary{
			UID:  s.UID,
			Name: stationName(s.Station.Name),
			Lat:  s.Lat,
			Lon:  s.Lon,
			AQI:  aqiVal,
			URL:  fmt.Sprintf("https://aqicn.org/station/@%d/", s.UID),
		})
	}

	return stations, nil
}

// NormalizeSearch maps a search payload to hits, keeping at most the first
// maxSearchHits entries in upstream order. AQI stays in its raw string
// form. A message payload yields an empty list.
func NormalizeSearch(p Payload) ([]SearchHit, error) {
	switch p.Kind {
	case PayloadMessage:
		return []SearchHit{}, nil
	case PayloadObject:
		return nil, &NormalizationError{Reason: "search data is not a list"}
	}

	entries := p.List
	if len(entries) > maxSearchHits {
		entries = entries[:maxSearchHits]
	}

	hits := make([]SearchHit, 0, len(entries))
	for _, raw := range entries {
		var e searchEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}

		lat, lon := 0.0, 0.0
		if len(e.Station.Geo) >= 2 {
			lat, lon = e.Station.Geo[0], e.Station.Geo[1]
		}

		hits = append(hits, SearchHit{
			UID:  e.UID,
			Name: e.Station.Name,
			AQI:  rawAQIString(e.AQI),
			Time: e.Time.STime,
			Lat:  lat,
			Lon:  lon,
		})
	}

	return hits, nil
}

// parseFeedAQI normalizes the feed aqi field: missing and the "-" sentinel
// become AQIUnknown, numbers and numeric strings parse to ints, and any
// other string is a shape mismatch.
func parseFeedAQI(raw json.RawMessage) (int, error) {
	switch firstByte(raw) {
	case 0, 'n':
		return AQIUnknown, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &NormalizationError{Reason: "malformed aqi field"}
		}
		if s == "-" {
			return AQIUnknown, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, &NormalizationError{Reason: "aqi is a non-numeric string"}
		}
		return n, nil
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, &NormalizationError{Reason: "malformed aqi field"}
		}
		return int(f), nil
	}
}

// parseStationAQI is the tolerant variant used for bounds filtering:
// any value that does not parse to an integer reports !ok.
func parseStationAQI(raw json.RawMessage) (int, bool) {
	switch firstByte(raw) {
	case 0, 'n':
		return 0, false
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
		return int(f), true
	}
}

// rawAQIString preserves the upstream AQI form for search hits.
// Numbers are rendered back to their decimal form; anything unreadable
// becomes the "-" sentinel.
func rawAQIString(raw json.RawMessage) string {
	switch firstByte(raw) {
	case 0, 'n':
		return "-"
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "-"
		}
		return s
	default:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return "-"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func stationName(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}
