package aqi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqimap/aqimap/internal/aqi"
	"github.com/aqimap/aqimap/internal/cache"
)

// fakeProvider returns canned payloads and records every fetch.
type fakeProvider struct {
	payload aqi.Payload
	err     error
	calls   []string
}

func (f *fakeProvider) Get(_ context.Context, path string, params url.Values) (aqi.Payload, error) {
	call := path
	if len(params) > 0 {
		call += "?" + params.Encode()
	}
	f.calls = append(f.calls, call)
	if f.err != nil {
		return aqi.Payload{}, f.err
	}
	return f.payload, nil
}

func feedPayload(t *testing.T, doc string) aqi.Payload {
	t.Helper()
	p, err := aqi.DecodePayload(json.RawMessage(doc))
	require.NoError(t, err)
	return p
}

func newTestService(provider aqi.Provider) *aqi.Service {
	return aqi.NewService(aqi.ServiceConfig{
		Provider: provider,
		Cache:    cache.New(cache.Config{}),
		Logger:   zerolog.New(io.Discard),
	})
}

func TestService_LookupByCity(t *testing.T) {
	provider := &fakeProvider{payload: feedPayload(t, `{
		"aqi": 152,
		"idx": 1451,
		"city": {"name": "Delhi, India", "geo": [28.6, 77.2], "url": "https://aqicn.org/city/delhi"}
	}`)}
	svc := newTestService(provider)

	reading, err := svc.LookupByCity(context.Background(), "Delhi")
	require.NoError(t, err)
	assert.Equal(t, 152, reading.AQI)
	assert.Equal(t, "Delhi, India", reading.CityName)
	require.Len(t, provider.calls, 1)
	assert.Equal(t, "feed/Delhi/", provider.calls[0])
}

func TestService_LookupByCity_CachedAcrossCase(t *testing.T) {
	provider := &fakeProvider{payload: feedPayload(t, `{"aqi": 60, "city": {"name": "Delhi"}}`)}
	svc := newTestService(provider)

	ctx := context.Background()
	_, err := svc.LookupByCity(ctx, "Delhi")
	require.NoError(t, err)

	// Same city, different casing: the key is lowercased, so no new fetch.
	_, err = svc.LookupByCity(ctx, "DELHI")
	require.NoError(t, err)

	assert.Len(t, provider.calls, 1)
}

func TestService_LookupByCity_NotFoundNotCached(t *testing.T) {
	provider := &fakeProvider{payload: aqi.Payload{
		Kind:    aqi.PayloadMessage,
		Message: "Unknown station",
	}}
	svc := newTestService(provider)

	ctx := context.Background()
	_, err := svc.LookupByCity(ctx, "atlantis")
	assert.ErrorIs(t, err, aqi.ErrNotFound)

	_, err = svc.LookupByCity(ctx, "atlantis")
	assert.ErrorIs(t, err, aqi.ErrNotFound)

	// Not-found results are never cached; both calls hit upstream.
	assert.Len(t, provider.calls, 2)
}

func TestService_LookupByCity_UpstreamErrorNotCached(t *testing.T) {
	provider := &fakeProvider{err: &aqi.UpstreamError{Message: "Invalid key"}}
	svc := newTestService(provider)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.LookupByCity(ctx, "delhi")
		var upstreamErr *aqi.UpstreamError
		require.ErrorAs(t, err, &upstreamErr)
	}

	// Errors never poison the cache key: every call retries upstream.
	assert.Len(t, provider.calls, 3)
}

func TestService_LookupByGeo_KeyBucketing(t *testing.T) {
	provider := &fakeProvider{payload: feedPayload(t, `{
		"aqi": 95,
		"city": {"name": "Delhi US Embassy", "geo": [28.6, 77.2]}
	}`)}
	svc := newTestService(provider)

	ctx := context.Background()
	first, err := svc.LookupByGeo(ctx, 28.61391, 77.20899)
	require.NoError(t, err)

	// Rounded to three decimals both queries share one cache entry, so
	// the second lookup is served without a new upstream fetch.
	second, err := svc.LookupByGeo(ctx, 28.61392, 77.20901)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, provider.calls, 1)
}

func TestService_LookupByGeo_SentinelIsNotFound(t *testing.T) {
	provider := &fakeProvider{payload: feedPayload(t, `{"aqi": "-", "city": {"name": "Remote"}}`)}
	svc := newTestService(provider)

	_, err := svc.LookupByGeo(context.Background(), 0.001, 0.002)
	assert.ErrorIs(t, err, aqi.ErrNotFound)
}

func TestService_LookupByGeo_FallbackCoordinates(t *testing.T) {
	provider := &fakeProvider{payload: feedPayload(t, `{"aqi": 12, "city": {"name": "Nearest"}}`)}
	svc := newTestService(provider)

	reading, err := svc.LookupByGeo(context.Background(), 52.37, 4.89)
	require.NoError(t, err)
	assert.Equal(t, 52.37, reading.Lat)
	assert.Equal(t, 4.89, reading.Lon)
}

func TestService_LookupByBounds(t *testing.T) {
	provider := &fakeProvider{payload: aqi.Payload{
		Kind: aqi.PayloadList,
		List: []json.RawMessage{
			json.RawMessage(`{"uid": 1, "lat": 28.6, "lon": 77.2, "aqi": "95", "station": {"name": "A"}}`),
		},
	}}
	svc := newTestService(provider)

	ne := aqi.LatLng{Lat: 28.7, Lng: 77.3}
	sw := aqi.LatLng{Lat: 28.5, Lng: 77.1}

	stations, err := svc.LookupByBounds(context.Background(), ne, sw)
	require.NoError(t, err)
	require.Len(t, stations, 1)

	// Upstream expects latlng=swlat,swlng,nelat,nelng.
	require.Len(t, provider.calls, 1)
	assert.Equal(t, "map/bounds/?latlng=28.5%2C77.1%2C28.7%2C77.3", provider.calls[0])
}

func TestService_LookupByBounds_EmptyListIsSuccessAndCached(t *testing.T) {
	provider := &fakeProvider{payload: aqi.Payload{Kind: aqi.PayloadList}}
	svc := newTestService(provider)

	ne := aqi.LatLng{Lat: 1, Lng: 1}
	sw := aqi.LatLng{Lat: 0, Lng: 0}

	ctx := context.Background()
	stations, err := svc.LookupByBounds(ctx, ne, sw)
	require.NoError(t, err)
	assert.Empty(t, stations)

	// An empty box is a valid result and cacheable like any other.
	_, err = svc.LookupByBounds(ctx, ne, sw)
	require.NoError(t, err)
	assert.Len(t, provider.calls, 1)
}

func TestService_Search_NeverCached(t *testing.T) {
	provider := &fakeProvider{payload: aqi.Payload{
		Kind: aqi.PayloadList,
		List: []json.RawMessage{
			json.RawMessage(`{"uid": 1, "aqi": "45", "station": {"name": "Delhi", "geo": [28.6, 77.2]}}`),
		},
	}}
	svc := newTestService(provider)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		hits, err := svc.Search(ctx, "del")
		require.NoError(t, err)
		require.Len(t, hits, 1)
	}

	require.Len(t, provider.calls, 2)
	assert.Equal(t, "search/?keyword=del", provider.calls[0])
}

func TestService_Search_PermissiveAboutLength(t *testing.T) {
	// Length validation lives at the HTTP boundary; the service accepts
	// any query.
	provider := &fakeProvider{payload: aqi.Payload{Kind: aqi.PayloadList}}
	svc := newTestService(provider)

	hits, err := svc.Search(context.Background(), "d")
	require.NoError(t, err)
	assert.Empty(t, hits)
}
