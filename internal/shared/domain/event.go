// Package domain holds building blocks shared by the bounded contexts.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened and may be published.
type DomainEvent interface {
	EventID() uuid.UUID
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata carries tracing context for an event.
type EventMetadata struct {
	CorrelationID uuid.UUID
	Source        string
}

// BaseEvent provides the DomainEvent bookkeeping. Embed it in concrete
// events.
type BaseEvent struct {
	eventID    uuid.UUID
	routingKey string
	occurredAt time.Time
	metadata   EventMetadata
}

// NewBaseEvent creates a base event stamped now.
func NewBaseEvent(routingKey string) BaseEvent {
	return BaseEvent{
		eventID:    uuid.New(),
		routingKey: routingKey,
		occurredAt: time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.eventID }
func (e BaseEvent) RoutingKey() string      { return e.routingKey }
func (e BaseEvent) OccurredAt() time.Time   { return e.occurredAt }
func (e BaseEvent) Metadata() EventMetadata { return e.metadata }

// SetMetadata sets the event metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.metadata = metadata
}
