// Package ratelimit enforces fixed-window request quotas per client.
package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Rule is a quota of Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// PerMinute returns a rule of n requests per minute.
func PerMinute(n int) Rule {
	return Rule{Limit: n, Window: time.Minute}
}

// Decision is the outcome of one request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests for a key within the current window.
type Limiter interface {
	Allow(ctx context.Context, key string, rule Rule) (Decision, error)
}

func decide(count int64, rule Rule, windowEnd, now time.Time) Decision {
	d := Decision{Limit: rule.Limit, Allowed: count <= int64(rule.Limit)}
	if remaining := int64(rule.Limit) - count; remaining > 0 {
		d.Remaining = int(remaining)
	}
	if !d.Allowed {
		d.RetryAfter = windowEnd.Sub(now)
	}
	return d
}

func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

// Memory is a process-local limiter.
type Memory struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	start time.Time
	count int64
}

// NewMemory creates an in-memory limiter.
func NewMemory() *Memory {
	return &Memory{windows: make(map[string]memoryWindow), now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string, rule Rule) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	start := windowStart(now, rule.Window)
	w := m.windows[key]
	if !w.start.Equal(start) {
		w = memoryWindow{start: start}
	}
	w.count++
	m.windows[key] = w

	if len(m.windows) > 10000 {
		m.evict(start)
	}
	return decide(w.count, rule, start.Add(rule.Window), now), nil
}

func (m *Memory) evict(current time.Time) {
	for k, w := range m.windows {
		if w.start.Before(current) {
			delete(m.windows, k)
		}
	}
}

// Fallback uses Primary and switches to Secondary for any request the
// primary cannot answer, so a broker outage never blocks the API.
type Fallback struct {
	Primary   Limiter
	Secondary Limiter
	Logger    *slog.Logger
}

func (f *Fallback) Allow(ctx context.Context, key string, rule Rule) (Decision, error) {
	d, err := f.Primary.Allow(ctx, key, rule)
	if err == nil {
		return d, nil
	}
	if f.Logger != nil {
		f.Logger.Warn("rate limiter unavailable, using fallback", "key", key, "error", err)
	}
	return f.Secondary.Allow(ctx, key, rule)
}
