// Package wire defines the WebSocketMessage envelope and its tagged-union
// payload variants (§6.1). Frames are JSON over Binary websocket frames,
// the same encode/decode idiom the teacher's web UI uses for its
// ServerMessage/ClientMessage pair, generalized to a single envelope with
// a typed payload for every command/query/broadcast this core recognises.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the frame every connection exchanges: a client-generated
// message_id (the idempotency key), a millisecond epoch timestamp, a kind
// discriminator, and the payload encoded as raw JSON until Decode resolves
// it to a concrete Payload by Kind.
type Envelope struct {
	MessageID string          `json:"message_id"`
	Timestamp int64           `json:"timestamp"` // epoch millis
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
}

// Payload is implemented by every message variant the core recognises.
type Payload interface {
	Kind() string
}

// Encode marshals a kind-tagged payload into an Envelope's wire bytes for
// a Binary websocket frame.
func Encode(messageID string, timestampMillis int64, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload %s: %w", payload.Kind(), err)
	}
	env := Envelope{
		MessageID: messageID,
		Timestamp: timestampMillis,
		Kind:      payload.Kind(),
		Payload:   body,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope unmarshals the outer envelope without resolving Payload;
// callers then use Unmarshal to resolve the inner payload once the Kind
// is known.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// Unmarshal decodes an Envelope's raw payload into the concrete Payload
// registered for its Kind, or returns ErrUnknownKind if Kind names no
// variant this core recognises.
func Unmarshal(env *Envelope) (Payload, error) {
	factory, ok := registry[env.Kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	p := factory()
	if err := json.Unmarshal(env.Payload, p); err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", env.Kind, err)
	}
	return p, nil
}

// ErrUnknownKind is returned by Unmarshal when an envelope's Kind names no
// registered payload variant; the dispatcher's catch-all maps this to
// INVALID_MESSAGE.
var ErrUnknownKind = fmt.Errorf("wire: unknown payload kind")

var registry = map[string]func() Payload{}

func register(kind string, factory func() Payload) {
	registry[kind] = factory
}
