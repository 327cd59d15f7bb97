package aqi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqimap/aqimap/internal/aqi"
)

func TestDecodePayload_Object(t *testing.T) {
	p, err := aqi.DecodePayload(json.RawMessage(`{"aqi": 42}`))
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadObject, p.Kind)
	assert.JSONEq(t, `{"aqi": 42}`, string(p.Object))
}

func TestDecodePayload_Message(t *testing.T) {
	p, err := aqi.DecodePayload(json.RawMessage(`"Unknown station"`))
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadMessage, p.Kind)
	assert.Equal(t, "Unknown station", p.Message)
}

func TestDecodePayload_List(t *testing.T) {
	p, err := aqi.DecodePayload(json.RawMessage(`[{"uid": 1}, {"uid": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, aqi.PayloadList, p.Kind)
	assert.Len(t, p.List, 2)
}

func TestDecodePayload_NullAndAbsent(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`)} {
		p, err := aqi.DecodePayload(raw)
		require.NoError(t, err)
		assert.Equal(t, aqi.PayloadMessage, p.Kind)
		assert.Empty(t, p.Message)
	}
}

func TestDecodePayload_UnknownShape(t *testing.T) {
	_, err := aqi.DecodePayload(json.RawMessage(`42`))
	var normErr *aqi.NormalizationError
	assert.ErrorAs(t, err, &normErr)
}
