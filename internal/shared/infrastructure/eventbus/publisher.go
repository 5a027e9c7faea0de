// Package eventbus publishes domain events to RabbitMQ or to in-process
// subscribers.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
)

// Publisher sends raw messages to the event bus.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// Mirrored publishes to Primary and copies every message to Mirror, so
// in-process subscribers see events that also leave for the broker. Close
// only closes Primary.
type Mirrored struct {
	Primary Publisher
	Mirror  Publisher
}

func (m Mirrored) Publish(ctx context.Context, routingKey string, payload []byte) error {
	return errors.Join(
		m.Primary.Publish(ctx, routingKey, payload),
		m.Mirror.Publish(ctx, routingKey, payload),
	)
}

func (m Mirrored) Close() error {
	return m.Primary.Close()
}

// Envelope is the wire format of a published event.
type Envelope struct {
	EventID       uuid.UUID       `json:"event_id"`
	RoutingKey    string          `json:"routing_key"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID uuid.UUID       `json:"correlation_id,omitempty"`
	Source        string          `json:"source,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps event for publishing. The payload is the JSON encoding
// of the event's exported fields.
func NewEnvelope(event domain.DomainEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", event.RoutingKey(), err)
	}
	meta := event.Metadata()
	return Envelope{
		EventID:       event.EventID(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		CorrelationID: meta.CorrelationID,
		Source:        meta.Source,
		Payload:       payload,
	}, nil
}

// PublishEvents publishes each event in its envelope, stopping at the first
// failure.
func PublishEvents(ctx context.Context, p Publisher, events ...domain.DomainEvent) error {
	for _, event := range events {
		env, err := NewEnvelope(event)
		if err != nil {
			return err
		}
		body, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
		if err := p.Publish(ctx, env.RoutingKey, body); err != nil {
			return fmt.Errorf("publish %s: %w", env.RoutingKey, err)
		}
	}
	return nil
}
