package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// InProcessBus delivers events synchronously to local subscribers. It is
// the publisher used when no broker is configured.
type InProcessBus struct {
	mu          sync.RWMutex
	subscribers []subscription
	logger      *slog.Logger
}

type subscription struct {
	pattern string
	handle  Handler
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers handle for routing keys matching pattern.
func (b *InProcessBus) Subscribe(pattern string, handle Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscription{pattern: pattern, handle: handle})
}

// Publish decodes payload and dispatches it. Handler failures are logged
// and never returned, so local delivery cannot fail the publishing call.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Error("failed to unmarshal event payload", "routing_key", routingKey, "error", err)
		return nil
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subscribers...)
	b.mu.RUnlock()

	for _, s := range subs {
		if !MatchTopic(s.pattern, routingKey) {
			continue
		}
		if err := s.handle(ctx, env); err != nil {
			b.logger.Error("event dispatch failed", "routing_key", routingKey, "event_id", env.EventID, "error", err)
		}
	}
	return nil
}

func (b *InProcessBus) Close() error {
	return nil
}

// MatchTopic reports whether key matches an AMQP topic pattern, where "*"
// matches exactly one word and "#" matches zero or more.
func MatchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}
