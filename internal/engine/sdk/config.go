package sdk

import (
	"encoding/json"
	"time"
)

// EngineConfig carries the settings handed to Engine.Initialize. Values come
// from the plugin manifest defaults merged with the user's profile.
type EngineConfig struct {
	EngineID string         `json:"engine_id"`
	Raw      map[string]any `json:"raw"`
}

// NewEngineConfig creates a configuration for engineID.
func NewEngineConfig(engineID string, raw map[string]any) EngineConfig {
	if raw == nil {
		raw = make(map[string]any)
	}
	return EngineConfig{EngineID: engineID, Raw: raw}
}

// Has checks if a key is set.
func (c EngineConfig) Has(key string) bool {
	_, ok := c.Raw[key]
	return ok
}

// GetString returns a string value or "".
func (c EngineConfig) GetString(key string) string {
	if v, ok := c.Raw[key].(string); ok {
		return v
	}
	return ""
}

// GetFloat returns a numeric value as float64.
func (c EngineConfig) GetFloat(key string) float64 {
	switch v := c.Raw[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return 0
}

// GetInt returns a numeric value truncated to int.
func (c EngineConfig) GetInt(key string) int {
	return int(c.GetFloat(key))
}

// GetBool returns a boolean value or false.
func (c EngineConfig) GetBool(key string) bool {
	v, _ := c.Raw[key].(bool)
	return v
}

// GetDuration parses a string value with time.ParseDuration.
func (c EngineConfig) GetDuration(key string) time.Duration {
	if v, ok := c.Raw[key].(string); ok {
		d, _ := time.ParseDuration(v)
		return d
	}
	return 0
}

// Merge returns a copy with other's values taking precedence.
func (c EngineConfig) Merge(other map[string]any) EngineConfig {
	merged := make(map[string]any, len(c.Raw)+len(other))
	for k, v := range c.Raw {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return EngineConfig{EngineID: c.EngineID, Raw: merged}
}
