package sdk

import (
	"fmt"
	"time"
)

// EngineMetadata identifies an engine.
type EngineMetadata struct {
	// ID is a unique identifier in reverse-domain style (e.g. "acme.focus").
	ID string `json:"id"`

	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`

	// MinAPIVersion is the oldest SDK version the engine works with.
	MinAPIVersion string `json:"min_api_version"`
}

// Validate checks the required fields.
func (m EngineMetadata) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("engine ID is required")
	}
	if m.Name == "" {
		return fmt.Errorf("engine name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("engine version is required")
	}
	if m.MinAPIVersion == "" {
		return fmt.Errorf("minimum API version is required")
	}
	return nil
}

// HealthStatus is the result of an engine health check.
type HealthStatus struct {
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewHealthStatus creates a status stamped with the current time.
func NewHealthStatus(healthy bool, message string) HealthStatus {
	return HealthStatus{Healthy: healthy, Message: message, CheckedAt: time.Now()}
}

// Version is a semantic version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// SDKVersion is the strategy engine SDK version implemented by this build.
var SDKVersion = Version{Major: 1, Minor: 0, Patch: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compatible reports whether v can host an engine requiring required.
// Majors must match and v's minor must not be older.
func (v Version) Compatible(required Version) bool {
	return v.Major == required.Major && v.Minor >= required.Minor
}

// ParseVersion parses "major.minor.patch".
func ParseVersion(s string) (Version, error) {
	var v Version
	n, err := fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	if err != nil {
		return v, fmt.Errorf("invalid version format: %w", err)
	}
	if n != 3 {
		return v, fmt.Errorf("invalid version format: expected major.minor.patch")
	}
	return v, nil
}
