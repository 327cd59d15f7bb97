// Package waqi provides a client for the WAQI (aqicn.org) API.
package waqi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aqimap/aqimap/internal/aqi"
)

const (
	// DefaultBaseURL is the base URL for the WAQI API.
	DefaultBaseURL = "https://api.waqi.info"

	// DefaultTimeout bounds each upstream request. There are no retries
	// and no circuit breaker: a transient upstream failure surfaces
	// immediately to the caller.
	DefaultTimeout = 10 * time.Second

	// ProviderName identifies this provider.
	ProviderName = "waqi"

	statusOK = "ok"
)

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token, appended to every request (required).
	Token string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a plain client with DefaultTimeout is used.
	HTTPClient HTTPDoer

	// Timeout for individual API requests when HTTPClient is nil.
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a WAQI API client. It attaches authentication, decodes the
// response envelope and classifies transport and upstream failures; it
// passes the data field through uninterpreted, including the bare-string
// payloads the upstream uses for unknown resources.
type Client struct {
	token      string
	baseURL    string
	httpClient HTTPDoer
}

// envelope is the outer WAQI response shape.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// NewClient creates a new WAQI client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Get fetches the data field for an endpoint path such as "feed/shanghai/"
// or "map/bounds/". The token parameter is always appended. Network-level
// failures and non-success HTTP statuses yield a TransportError; an
// envelope whose status is not "ok" yields an UpstreamError carrying the
// provider's own message.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (aqi.Payload, error) {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("token", c.token)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, strings.TrimPrefix(path, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return aqi.Payload{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return aqi.Payload{}, &aqi.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return aqi.Payload{}, &aqi.TransportError{
			Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return aqi.Payload{}, &aqi.NormalizationError{
			Reason: fmt.Sprintf("decode envelope: %v", err),
		}
	}

	if env.Status != statusOK {
		return aqi.Payload{}, &aqi.UpstreamError{Message: upstreamMessage(env.Data)}
	}

	return aqi.DecodePayload(env.Data)
}

// upstreamMessage extracts the provider's error message from the data
// field of a failed envelope. The upstream usually puts a bare string
// there; anything else is reported generically.
func upstreamMessage(data json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil && msg != "" {
		return msg
	}
	return "unknown error"
}
