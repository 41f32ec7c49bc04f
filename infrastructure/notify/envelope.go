/*
Package notify fans domain events out to external subscribers.

The Dispatcher implements shared.Notifier. Each event is encoded once into
an Envelope and delivered to every registered Sink in the background; a
failing sink is logged and counted, never reported to the caller.
*/
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"backoffice/domain/shared"

	"github.com/google/uuid"
)

// Envelope is the wire format shared by every sink and the outbox table.
type Envelope struct {
	ID          string         `json:"id"`
	Event       string         `json:"event"`
	AggregateID string         `json:"aggregate_id"`
	OccurredOn  time.Time      `json:"occurred_on"`
	Data        map[string]any `json:"data"`
}

// NewEnvelope validates event and stamps it with a fresh id.
func NewEnvelope(event shared.DomainEvent) (Envelope, error) {
	if err := shared.ValidateEvent(event); err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:          uuid.New().String(),
		Event:       event.EventName(),
		AggregateID: event.GetAggregateID(),
		OccurredOn:  event.OccurredOn().UTC(),
		Data:        event.Payload(),
	}, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.Event, err)
	}
	return body, nil
}

// Encode is NewEnvelope followed by Marshal.
func Encode(event shared.DomainEvent) (Envelope, []byte, error) {
	env, err := NewEnvelope(event)
	if err != nil {
		return Envelope{}, nil, err
	}
	body, err := env.Marshal()
	if err != nil {
		return Envelope{}, nil, err
	}
	return env, body, nil
}

// Decode parses a body produced by Marshal.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}
