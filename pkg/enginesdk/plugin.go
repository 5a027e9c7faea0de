package enginesdk

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/taskrank/internal/engine/enginerpc"
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// Serve runs engine as a plugin. Call it from the plugin's main; it blocks
// until the host disconnects.
func Serve(engine Engine) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: enginerpc.HandshakeConfig,
		Plugins:         enginerpc.PluginMap(engine),
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:       engine.Metadata().ID,
			Level:      hclog.Info,
			Output:     os.Stderr,
			JSONFormat: true,
		}),
	})
}

// BaseEngine implements the lifecycle methods of Engine. Embed it and add
// Strategies and Weigh.
type BaseEngine struct {
	metadata EngineMetadata
	config   EngineConfig
}

// NewBaseEngine creates a BaseEngine with the given metadata.
func NewBaseEngine(metadata EngineMetadata) *BaseEngine {
	return &BaseEngine{
		metadata: metadata,
		config:   sdk.NewEngineConfig(metadata.ID, nil),
	}
}

func (e *BaseEngine) Metadata() EngineMetadata {
	return e.metadata
}

// Initialize stores the configuration.
func (e *BaseEngine) Initialize(_ context.Context, config EngineConfig) error {
	e.config = config
	return nil
}

func (e *BaseEngine) HealthCheck(context.Context) HealthStatus {
	return sdk.NewHealthStatus(true, "engine is healthy")
}

func (e *BaseEngine) Shutdown(context.Context) error {
	return nil
}

// Config returns the stored configuration.
func (e *BaseEngine) Config() EngineConfig {
	return e.config
}

// GetFloat returns a numeric setting or defaultVal when unset.
func (e *BaseEngine) GetFloat(key string, defaultVal float64) float64 {
	if e.config.Has(key) {
		return e.config.GetFloat(key)
	}
	return defaultVal
}

// GetString returns a string setting or defaultVal when unset.
func (e *BaseEngine) GetString(key, defaultVal string) string {
	if e.config.Has(key) {
		return e.config.GetString(key)
	}
	return defaultVal
}

// FindStrategy returns the definition named name from defs.
func FindStrategy(defs []StrategyDefinition, name string) (StrategyDefinition, error) {
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return StrategyDefinition{}, fmt.Errorf("%q: %w", name, ErrStrategyNotFound)
}

// MetadataBuilder builds EngineMetadata.
type MetadataBuilder struct {
	metadata EngineMetadata
}

// NewMetadata starts a builder with the current SDK version as minimum.
func NewMetadata(id, name, version string) *MetadataBuilder {
	return &MetadataBuilder{metadata: EngineMetadata{
		ID:            id,
		Name:          name,
		Version:       version,
		MinAPIVersion: sdk.SDKVersion.String(),
	}}
}

func (b *MetadataBuilder) Author(author string) *MetadataBuilder {
	b.metadata.Author = author
	return b
}

func (b *MetadataBuilder) Description(desc string) *MetadataBuilder {
	b.metadata.Description = desc
	return b
}

func (b *MetadataBuilder) MinAPIVersion(version string) *MetadataBuilder {
	b.metadata.MinAPIVersion = version
	return b
}

func (b *MetadataBuilder) Build() EngineMetadata {
	return b.metadata
}
