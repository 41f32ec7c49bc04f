package po

import (
	"time"

	"backoffice/domain/shared"
	"backoffice/infrastructure/notify"
)

// OutboxEventPO Outbox event persistence object
// Payload holds the same JSON envelope the live sinks receive
type OutboxEventPO struct {
	ID          string    `gorm:"primaryKey;size:64"`
	AggregateID string    `gorm:"size:64;index;not null"`
	EventType   string    `gorm:"size:100;index;not null"`
	Payload     string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:20;default:PENDING;not null;index"`
	RetryCount  int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (OutboxEventPO) TableName() string {
	return "outbox_events"
}

type EventStatus string

const (
	EventStatusPending    EventStatus = "PENDING"
	EventStatusProcessing EventStatus = "PROCESSING"
	EventStatusPublished  EventStatus = "PUBLISHED"
	EventStatusFailed     EventStatus = "FAILED"
)

func FromDomainEvent(event shared.DomainEvent) (*OutboxEventPO, error) {
	envelope, body, err := notify.Encode(event)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &OutboxEventPO{
		ID:          envelope.ID,
		AggregateID: envelope.AggregateID,
		EventType:   envelope.Event,
		Payload:     string(body),
		Status:      string(EventStatusPending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ToEnvelope decodes the stored payload, mostly for tests and tooling
func (po *OutboxEventPO) ToEnvelope() (notify.Envelope, error) {
	return notify.Decode([]byte(po.Payload))
}
