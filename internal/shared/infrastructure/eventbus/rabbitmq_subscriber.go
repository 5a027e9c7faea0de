package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one event envelope.
type Handler func(ctx context.Context, env Envelope) error

// RabbitMQSubscriber consumes taskrank events through a private queue bound
// to the topic exchange. The queue is exclusive and removed on disconnect.
type RabbitMQSubscriber struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewRabbitMQSubscriber connects to url.
func NewRabbitMQSubscriber(url string, logger *slog.Logger) (*RabbitMQSubscriber, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, ch, err := dialExchange(url)
	if err != nil {
		return nil, err
	}
	return &RabbitMQSubscriber{conn: conn, channel: ch, logger: logger}, nil
}

// Consume binds patterns (topic syntax, e.g. "taskrank.#") and calls handle
// for every delivery until ctx is done. Messages that fail to decode or
// whose handler fails are rejected without requeue.
func (s *RabbitMQSubscriber) Consume(ctx context.Context, patterns []string, handle Handler) error {
	q, err := s.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, pattern := range patterns {
		if err := s.channel.QueueBind(q.Name, pattern, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind %q: %w", pattern, err)
		}
	}

	deliveries, err := s.channel.ConsumeWithContext(ctx, q.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}

	s.logger.Info("RabbitMQ subscriber started", "queue", q.Name, "patterns", patterns)

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			var env Envelope
			if err := json.Unmarshal(d.Body, &env); err != nil {
				s.logger.Warn("dropping undecodable message", "routing_key", d.RoutingKey, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handle(ctx, env); err != nil {
				s.logger.Error("event handler failed", "routing_key", d.RoutingKey, "event_id", env.EventID, "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close closes the channel and connection.
func (s *RabbitMQSubscriber) Close() error {
	if err := s.channel.Close(); err != nil {
		s.logger.Warn("error closing channel", "error", err)
	}
	return s.conn.Close()
}
