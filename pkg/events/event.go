package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is an integration event. The payload is the whole wire body; the type travels
// out of band (NATS subject, watermill metadata).
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Encode renders the wire body of e.
func Encode(e Event) ([]byte, error) {
	body, err := json.Marshal(e.Payload())
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.EventType(), err)
	}
	return body, nil
}

// Decode rebuilds an event from its type and wire body. The body must be a JSON object.
func Decode(eventType string, body []byte, occurredAt time.Time) (BaseEvent, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return BaseEvent{}, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	if data == nil {
		return BaseEvent{}, fmt.Errorf("decode %s payload: not an object", eventType)
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: occurredAt}, nil
}
