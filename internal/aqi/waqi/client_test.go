package waqi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqimap/aqimap/internal/aqi"
	"github.com/aqimap/aqimap/internal/aqi/waqi"
)

func TestClient_Get_AppendsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed/shanghai/", r.URL.Path)
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "data": {"aqi": 74, "idx": 5}}`))
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{
		Token:   "test-token",
		BaseURL: server.URL,
	})

	payload, err := client.Get(context.Background(), "feed/shanghai/", nil)
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadObject, payload.Kind)
}

func TestClient_Get_PreservesQueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/map/bounds/", r.URL.Path)
		assert.Equal(t, "28.5,77.1,28.7,77.3", r.URL.Query().Get("latlng"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "data": []}`))
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{
		Token:   "test-token",
		BaseURL: server.URL,
	})

	params := map[string][]string{"latlng": {"28.5,77.1,28.7,77.3"}}
	payload, err := client.Get(context.Background(), "map/bounds/", params)
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadList, payload.Kind)
}

func TestClient_Get_BareStringPassedThrough(t *testing.T) {
	// The upstream signals "no such resource" as a bare string in data.
	// The client must pass it through verbatim, not interpret it.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "data": "Unknown station"}`))
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{Token: "t", BaseURL: server.URL})

	payload, err := client.Get(context.Background(), "feed/atlantis/", nil)
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadMessage, payload.Kind)
	assert.Equal(t, "Unknown station", payload.Message)
}

func TestClient_Get_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "error", "data": "Invalid key"}`))
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{Token: "bad", BaseURL: server.URL})

	_, err := client.Get(context.Background(), "feed/delhi/", nil)
	var upstreamErr *aqi.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "Invalid key", upstreamErr.Message)
}

func TestClient_Get_TransportErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // connection refused from now on

	client := waqi.NewClient(waqi.ClientConfig{Token: "t", BaseURL: server.URL})

	_, err := client.Get(context.Background(), "feed/delhi/", nil)
	var transportErr *aqi.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestClient_Get_TransportErrorOnHTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{Token: "t", BaseURL: server.URL})

	_, err := client.Get(context.Background(), "feed/delhi/", nil)
	var transportErr *aqi.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestClient_Get_TransportErrorOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{
		Token:   "t",
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	})

	_, err := client.Get(context.Background(), "feed/delhi/", nil)
	var transportErr *aqi.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestClient_Get_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := waqi.NewClient(waqi.ClientConfig{Token: "t", BaseURL: server.URL})

	_, err := client.Get(context.Background(), "feed/delhi/", nil)
	var normErr *aqi.NormalizationError
	assert.ErrorAs(t, err, &normErr)
}
