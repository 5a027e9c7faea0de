package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors for engine conditions.
var (
	// ErrEngineNotFound is returned when an engine is not registered.
	ErrEngineNotFound = errors.New("engine not found")

	// ErrEngineAlreadyExists is returned when registering a duplicate engine id.
	ErrEngineAlreadyExists = errors.New("engine already exists")

	// ErrStrategyNotFound is returned when an engine does not provide a strategy.
	ErrStrategyNotFound = errors.New("strategy not provided by engine")

	// ErrInvalidWeights is returned when an engine answers with unusable weights.
	ErrInvalidWeights = errors.New("invalid weights")

	// ErrVersionIncompatible is returned when a plugin needs a newer SDK.
	ErrVersionIncompatible = errors.New("incompatible version")

	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// EngineError wraps an error with the engine and operation that produced it.
type EngineError struct {
	EngineID  string
	Operation string
	Err       error
}

func (e *EngineError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("engine %s: %s: %v", e.EngineID, e.Operation, e.Err)
	}
	return fmt.Sprintf("engine %s: %v", e.EngineID, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// NewEngineError creates a new engine error.
func NewEngineError(engineID, operation string, err error) *EngineError {
	return &EngineError{EngineID: engineID, Operation: operation, Err: err}
}

// LoadError represents a failure to start or connect to a plugin binary.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load plugin %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load plugin %q: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new load error.
func NewLoadError(path, reason string, err error) *LoadError {
	return &LoadError{Path: path, Reason: reason, Err: err}
}

// IsEngineNotFound reports whether err is ErrEngineNotFound.
func IsEngineNotFound(err error) bool {
	return errors.Is(err, ErrEngineNotFound)
}

// IsCircuitOpen reports whether err comes from an open circuit breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
