package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// KeyAction is the reserved key selecting the handler of a message.
const KeyAction = "action"

// Message is the schema-less wire record: a flat mapping of string keys to
// string values, serialized as a JSON object. Key order is not significant.
// Build a fresh Message per event; treat it as read-only once marshaled.
type Message map[string]string

// NewMessage creates a message with its action already set.
func NewMessage(action string) Message {
	m := make(Message, 8)
	if action != "" {
		m[KeyAction] = action
	}
	return m
}

// Add sets key to value and returns the message for chaining.
func (m Message) Add(key, value string) Message {
	m[key] = value
	return m
}

// Get returns the value stored under key.
func (m Message) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Action returns the value of the action key, or "" when absent.
func (m Message) Action() string {
	return m[KeyAction]
}

// Clone returns an independent copy.
func (m Message) Clone() Message {
	out := make(Message, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Marshal converts the message into its JSON payload.
func (m Message) Marshal() ([]byte, error) {
	for k, v := range m {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return nil, malformed("message is not valid UTF-8", fmt.Errorf("key %q", k))
		}
	}
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, malformed("failed to encode message", err)
	}
	return data, nil
}

// Unmarshal parses a JSON payload. Anything but a JSON object of string values
// fails with ErrMalformed wrapping the decoder error.
func Unmarshal(data []byte) (Message, error) {
	if !utf8.Valid(data) {
		return nil, malformed("payload is not valid UTF-8", nil)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, malformed("failed to decode message", err)
	}
	if m == nil {
		return nil, malformed("payload is not an object", nil)
	}
	return Message(m), nil
}

// FormatFloat renders a coordinate in its shortest decimal form.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}

// ParseFloat accepts any decimal float32 except NaN and infinities.
func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return float32(f), nil
}

// AddFloat stores f under key.
func (m Message) AddFloat(key string, f float32) Message {
	return m.Add(key, FormatFloat(f))
}

// Float reads a required float field.
func (m Message) Float(key string) (float32, error) {
	v, ok := m[key]
	if !ok {
		return 0, missingField(key)
	}
	f, err := ParseFloat(v)
	if err != nil {
		return 0, invalidField(key, err)
	}
	return f, nil
}

// AddPosition stores p as the x, y and z keys.
func (m Message) AddPosition(p mgl32.Vec3) Message {
	return m.AddFloat("x", p.X()).AddFloat("y", p.Y()).AddFloat("z", p.Z())
}

// Position reads the x, y and z keys.
func (m Message) Position() (mgl32.Vec3, error) {
	var p mgl32.Vec3
	for i, key := range [...]string{"x", "y", "z"} {
		f, err := m.Float(key)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		p[i] = f
	}
	return p, nil
}

// PlayerID reads the required player_id key.
func (m Message) PlayerID() (uuid.UUID, error) {
	v, ok := m[KeyPlayerID]
	if !ok {
		return uuid.Nil, missingField(KeyPlayerID)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, invalidField(KeyPlayerID, err)
	}
	return id, nil
}
