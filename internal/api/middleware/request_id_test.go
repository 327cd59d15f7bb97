package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aqimap/aqimap/internal/api/middleware"
)

func TestRequestID_GeneratesID(t *testing.T) {
	var captured string
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/", http.NoBody)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.True(t, strings.HasPrefix(captured, "req_"))
	assert.Equal(t, captured, w.Header().Get("X-Request-Id"))
}

func TestRequestID_PropagatesIncomingID(t *testing.T) {
	var captured string
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		captured = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/", http.NoBody)
	req.Header.Set("X-Request-Id", "req_upstream1234")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "req_upstream1234", captured)
	assert.Equal(t, "req_upstream1234", w.Header().Get("X-Request-Id"))
}

func TestGetRequestID_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/", http.NoBody)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}
