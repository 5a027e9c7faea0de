package registry

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

// DefaultManifestFilename is the manifest name looked up in plugin directories.
const DefaultManifestFilename = "engine.json"

// Manifest describes a plugin engine. It is read from engine.json next to
// the plugin binary.
type Manifest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	MinAPIVersion string `json:"min_api_version"`
	Author        string `json:"author,omitempty"`
	Description   string `json:"description,omitempty"`

	// BinaryPath is the plugin executable, relative to the manifest.
	BinaryPath string `json:"binary_path,omitempty"`

	// Checksum is "sha256:HEX" or a bare hex SHA-256 of the binary.
	Checksum string `json:"checksum,omitempty"`

	// ConfigDefaults is passed to Engine.Initialize.
	ConfigDefaults map[string]any `json:"config_defaults,omitempty"`

	dir string
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.dir = filepath.Dir(path)

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

// Validate checks required fields and SDK compatibility.
func (m *Manifest) Validate() error {
	if err := m.ToMetadata().Validate(); err != nil {
		return err
	}

	required, err := sdk.ParseVersion(m.MinAPIVersion)
	if err != nil {
		return fmt.Errorf("invalid min_api_version: %w", err)
	}
	if !sdk.SDKVersion.Compatible(required) {
		return fmt.Errorf("SDK %s cannot host engine requiring %s: %w",
			sdk.SDKVersion, m.MinAPIVersion, sdk.ErrVersionIncompatible)
	}
	return nil
}

// BinaryAbsPath resolves the plugin binary location. The binary defaults to
// the directory name when binary_path is empty.
func (m *Manifest) BinaryAbsPath() string {
	path := m.BinaryPath
	if path == "" {
		path = filepath.Base(m.dir)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

// Dir returns the directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// ToMetadata converts the manifest to engine metadata.
func (m *Manifest) ToMetadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            m.ID,
		Name:          m.Name,
		Version:       m.Version,
		Author:        m.Author,
		Description:   m.Description,
		MinAPIVersion: m.MinAPIVersion,
	}
}
