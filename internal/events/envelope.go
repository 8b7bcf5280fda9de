package events

import (
	"encoding/json"
	"time"
)

// Topics lists every topic the outbox publishes to.
func Topics() []string {
	return []string{InvoiceSetTopic, UserRegistrationTopic, PunchTopic}
}

// Envelope holds the fields shared by every event payload. Consumers decode
// into it first and keep Raw for the type-specific part.
type Envelope struct {
	EventType  string          `json:"event_type"`
	RequestID  string          `json:"request_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Raw        json.RawMessage `json:"-"`
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, err
	}
	env.Raw = append(json.RawMessage(nil), data...)
	return env, nil
}
