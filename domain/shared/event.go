package shared

import (
	"context"
	"fmt"
	"time"
)

// DomainEvent is something that happened in the domain that other parts
// of the system may react to.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	GetAggregateID() string

	// Payload is the serialisable body delivered to sinks
	Payload() map[string]any
}

// Notifier receives events once the state change they describe is durable
// (or, for pre-events, right before the change is attempted).
// Publishing never fails from the caller's point of view.
type Notifier interface {
	Publish(ctx context.Context, events ...DomainEvent)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, ...DomainEvent) {}

func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	if event.EventName() == "" {
		return fmt.Errorf("event name cannot be empty")
	}

	if event.GetAggregateID() == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}

	if event.OccurredOn().IsZero() {
		return fmt.Errorf("occurred on time cannot be zero")
	}

	return nil
}
