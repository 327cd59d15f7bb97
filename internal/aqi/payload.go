package aqi

import (
	"encoding/json"
	"unicode"
)

// PayloadKind discriminates the shapes the upstream puts in its envelope's
// data field: a structured object (single-station feed), a bare string
// (the upstream's way of saying "no such resource"), or a list (bounds
// and search results).
type PayloadKind int

const (
	// PayloadObject is a structured JSON object.
	PayloadObject PayloadKind = iota

	// PayloadMessage is a bare string standing in for missing data.
	PayloadMessage

	// PayloadList is a JSON array.
	PayloadList
)

// Payload is a tagged union over the upstream data shapes. The client
// produces it verbatim; interpreting a shape (for example treating a
// message as not-found) is the normalizer's job.
type Payload struct {
	Kind    PayloadKind
	Object  json.RawMessage   // set when Kind == PayloadObject
	Message string            // set when Kind == PayloadMessage
	List    []json.RawMessage // set when Kind == PayloadList
}

// DecodePayload classifies a raw data field into a Payload.
// null and absent data decode as an empty message.
func DecodePayload(raw json.RawMessage) (Payload, error) {
	switch firstByte(raw) {
	case 0, 'n': // absent or JSON null
		return Payload{Kind: PayloadMessage}, nil
	case '"':
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return Payload{}, &NormalizationError{Reason: "malformed string data"}
		}
		return Payload{Kind: PayloadMessage, Message: msg}, nil
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return Payload{}, &NormalizationError{Reason: "malformed list data"}
		}
		return Payload{Kind: PayloadList, List: list}, nil
	case '{':
		return Payload{Kind: PayloadObject, Object: raw}, nil
	default:
		return Payload{}, &NormalizationError{Reason: "data is neither object, string nor list"}
	}
}

// firstByte returns the first non-whitespace byte of raw, or 0.
func firstByte(raw []byte) byte {
	for _, b := range raw {
		if !unicode.IsSpace(rune(b)) {
			return b
		}
	}
	return 0
}
