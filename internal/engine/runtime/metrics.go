package runtime

import (
	"sync"
	"time"
)

// MetricsCollector collects call metrics per engine or guarded source.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*EngineMetrics
}

// EngineMetrics are the counters for one breaker name.
type EngineMetrics struct {
	Name                string                      `json:"name"`
	TotalCalls          int64                       `json:"total_calls"`
	SuccessfulCalls     int64                       `json:"successful_calls"`
	FailedCalls         int64                       `json:"failed_calls"`
	TotalDuration       time.Duration               `json:"total_duration"`
	AverageDuration     time.Duration               `json:"average_duration"`
	MaxDuration         time.Duration               `json:"max_duration"`
	LastCallAt          time.Time                   `json:"last_call_at"`
	LastError           string                      `json:"last_error,omitempty"`
	CircuitBreakerState string                      `json:"circuit_breaker_state"`
	CircuitOpenCount    int64                       `json:"circuit_open_count"`
	Operations          map[string]OperationMetrics `json:"operations"`
}

// OperationMetrics are the counters for one operation.
type OperationMetrics struct {
	TotalCalls  int64         `json:"total_calls"`
	FailedCalls int64         `json:"failed_calls"`
	Rejected    int64         `json:"rejected"`
	MaxDuration time.Duration `json:"max_duration"`
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{metrics: make(map[string]*EngineMetrics)}
}

func (m *MetricsCollector) entry(name string) *EngineMetrics {
	e, ok := m.metrics[name]
	if !ok {
		e = &EngineMetrics{
			Name:                name,
			CircuitBreakerState: "closed",
			Operations:          make(map[string]OperationMetrics),
		}
		m.metrics[name] = e
	}
	return e
}

// RecordOperation records a completed call.
func (m *MetricsCollector) RecordOperation(name, operation string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(name)
	e.TotalCalls++
	e.TotalDuration += duration
	e.AverageDuration = e.TotalDuration / time.Duration(e.TotalCalls)
	e.MaxDuration = max(e.MaxDuration, duration)
	e.LastCallAt = time.Now()

	op := e.Operations[operation]
	op.TotalCalls++
	op.MaxDuration = max(op.MaxDuration, duration)

	if err != nil {
		e.FailedCalls++
		e.LastError = err.Error()
		op.FailedCalls++
	} else {
		e.SuccessfulCalls++
	}
	e.Operations[operation] = op
}

// RecordCircuitBreakerChange records a breaker transition.
func (m *MetricsCollector) RecordCircuitBreakerChange(name, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry(name).CircuitBreakerState = state
}

// RecordCircuitOpen records a call rejected by an open breaker.
func (m *MetricsCollector) RecordCircuitOpen(name, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(name)
	e.CircuitOpenCount++
	op := e.Operations[operation]
	op.Rejected++
	e.Operations[operation] = op
}

// Get returns a copy of the metrics for name, or nil.
func (m *MetricsCollector) Get(name string) *EngineMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.metrics[name]
	if !ok {
		return nil
	}
	c := copyMetrics(e)
	return &c
}

// GetAll returns a copy of every entry.
func (m *MetricsCollector) GetAll() map[string]EngineMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]EngineMetrics, len(m.metrics))
	for name, e := range m.metrics {
		out[name] = copyMetrics(e)
	}
	return out
}

// Reset clears all metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = make(map[string]*EngineMetrics)
}

func copyMetrics(e *EngineMetrics) EngineMetrics {
	c := *e
	c.Operations = make(map[string]OperationMetrics, len(e.Operations))
	for k, v := range e.Operations {
		c.Operations[k] = v
	}
	return c
}
