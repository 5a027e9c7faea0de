package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics records application counters and timings.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag represents a key-value pair for metric labeling.
type Tag struct {
	Key   string
	Value string
}

// T creates a new Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// TimingSummary aggregates the recorded durations of one series.
type TimingSummary struct {
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	Counters map[string]int64         `json:"counters"`
	Timings  map[string]TimingSummary `json:"timings"`
}

// InMemoryMetrics keeps counters and timing summaries in process. The
// series key is the metric name followed by its sorted tags.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	timings  map[string]TimingSummary
}

// NewInMemoryMetrics creates a new in-memory metrics collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		timings:  make(map[string]TimingSummary),
	}
}

// Counter adds value to a counter.
func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	key := formatKey(name, tags)
	m.mu.Lock()
	m.counters[key] += value
	m.mu.Unlock()
}

// Timing records a duration.
func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	key := formatKey(name, tags)
	ms := float64(duration) / float64(time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.timings[key]
	s.Count++
	s.TotalMs += ms
	s.MaxMs = max(s.MaxMs, ms)
	m.timings[key] = s
}

// GetCounter returns the value of one counter series.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[formatKey(name, tags)]
}

// Snapshot copies the collected metrics.
func (m *InMemoryMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Timings:  make(map[string]TimingSummary, len(m.timings)),
	}
	for k, v := range m.counters {
		s.Counters[k] = v
	}
	for k, v := range m.timings {
		s.Timings[k] = v
	}
	return s
}

func formatKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := append([]Tag(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	b.WriteString(name)
	for _, t := range sorted {
		b.WriteString(",")
		b.WriteString(t.Key)
		b.WriteString("=")
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names.
const (
	MetricOperationTotal    = "taskrank.operation.total"
	MetricOperationDuration = "taskrank.operation.duration"
	MetricOperationErrors   = "taskrank.operation.errors"

	MetricHTTPRequests = "taskrank.http.requests"
	MetricHTTPDuration = "taskrank.http.duration"
	MetricRateLimited  = "taskrank.http.rate_limited"
)
