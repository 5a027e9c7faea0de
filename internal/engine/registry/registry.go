// Package registry tracks strategy engines, both built in and loaded from
// plugin binaries, and manages their lifecycle.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// Registry manages engine registration and lookup.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]EngineEntry
	logger  *slog.Logger
}

// EngineEntry holds a registered engine.
type EngineEntry struct {
	// Engine is nil until a factory-backed entry is first used.
	Engine   sdk.Engine
	Factory  sdk.EngineFactory
	Manifest *Manifest
	// Overrides are merged over the manifest's config defaults on load.
	Overrides map[string]any
	Status    EngineStatus
	Error     error
	Builtin   bool
}

// Metadata returns the engine metadata, falling back to the manifest for
// entries that are not loaded.
func (e EngineEntry) Metadata() sdk.EngineMetadata {
	if e.Engine != nil {
		return e.Engine.Metadata()
	}
	if e.Manifest != nil {
		return e.Manifest.ToMetadata()
	}
	return sdk.EngineMetadata{}
}

// EngineStatus is the lifecycle state of an engine.
type EngineStatus string

const (
	StatusUnloaded EngineStatus = "unloaded"
	StatusLoading  EngineStatus = "loading"
	StatusReady    EngineStatus = "ready"
	StatusFailed   EngineStatus = "failed"
	StatusShutdown EngineStatus = "shutdown"
)

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		engines: make(map[string]EngineEntry),
		logger:  logger,
	}
}

// RegisterBuiltin registers an in-process engine that is ready immediately.
func (r *Registry) RegisterBuiltin(engine sdk.Engine) error {
	metadata := engine.Metadata()
	if metadata.ID == "" {
		return fmt.Errorf("engine ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[metadata.ID]; exists {
		return sdk.ErrEngineAlreadyExists
	}

	r.engines[metadata.ID] = EngineEntry{
		Engine:  engine,
		Status:  StatusReady,
		Builtin: true,
	}

	r.logger.Info("registered built-in engine", "engine_id", metadata.ID)
	return nil
}

// RegisterFactory registers an engine that is created on first Get.
func (r *Registry) RegisterFactory(id string, factory sdk.EngineFactory, manifest *Manifest) error {
	if id == "" {
		return fmt.Errorf("engine ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[id]; exists {
		return sdk.ErrEngineAlreadyExists
	}

	r.engines[id] = EngineEntry{
		Factory:  factory,
		Manifest: manifest,
		Status:   StatusUnloaded,
	}

	r.logger.Info("registered engine factory", "engine_id", id)
	return nil
}

// Get returns an engine by ID, creating it from its factory if needed.
func (r *Registry) Get(ctx context.Context, id string) (sdk.Engine, error) {
	r.mu.RLock()
	entry, exists := r.engines[id]
	r.mu.RUnlock()

	if !exists {
		return nil, sdk.ErrEngineNotFound
	}

	switch {
	case entry.Status == StatusReady && entry.Engine != nil:
		return entry.Engine, nil
	case entry.Status == StatusFailed:
		return nil, entry.Error
	case entry.Status == StatusUnloaded && entry.Factory != nil:
		return r.loadEngine(ctx, id)
	}

	return nil, fmt.Errorf("engine %s is in unexpected state: %s", id, entry.Status)
}

func (r *Registry) loadEngine(ctx context.Context, id string) (sdk.Engine, error) {
	r.mu.Lock()
	entry := r.engines[id]
	if entry.Status == StatusReady && entry.Engine != nil {
		r.mu.Unlock()
		return entry.Engine, nil
	}
	entry.Status = StatusLoading
	r.engines[id] = entry
	r.mu.Unlock()

	r.logger.Info("loading engine", "engine_id", id)

	engine, err := entry.Factory()
	if err == nil {
		var defaults map[string]any
		if entry.Manifest != nil {
			defaults = entry.Manifest.ConfigDefaults
		}
		err = engine.Initialize(ctx, sdk.NewEngineConfig(id, defaults).Merge(entry.Overrides))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		entry.Status = StatusFailed
		entry.Error = fmt.Errorf("failed to create engine %s: %w", id, err)
		r.engines[id] = entry
		return nil, entry.Error
	}

	entry.Engine = engine
	entry.Status = StatusReady
	entry.Error = nil
	r.engines[id] = entry

	r.logger.Info("engine loaded", "engine_id", id)
	return engine, nil
}

// Configure sets settings that override an engine's manifest defaults. It
// only affects engines that have not been loaded yet.
func (r *Registry) Configure(id string, settings map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.engines[id]
	if !ok {
		return sdk.ErrEngineNotFound
	}
	if entry.Status != StatusUnloaded {
		return fmt.Errorf("engine %s already %s", id, entry.Status)
	}
	entry.Overrides = settings
	r.engines[id] = entry
	return nil
}

// Unregister removes a non-builtin engine.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.engines[id]
	if !exists {
		return sdk.ErrEngineNotFound
	}
	if entry.Builtin {
		return fmt.Errorf("cannot unregister built-in engine %s", id)
	}

	delete(r.engines, id)
	r.logger.Info("unregistered engine", "engine_id", id)
	return nil
}

// List returns all entries ordered by engine ID.
func (r *Registry) List() []EngineEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]EngineEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, r.engines[id])
	}
	return entries
}

// IDs returns the registered engine IDs in order.
func (r *Registry) IDs() []string {
	entries := r.List()
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Metadata().ID)
	}
	return ids
}

// Has checks if an engine is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.engines[id]
	return exists
}

// Status returns the lifecycle state of an engine.
func (r *Registry) Status(id string) (EngineStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.engines[id]
	if !exists {
		return "", sdk.ErrEngineNotFound
	}
	return entry.Status, nil
}

// Count returns the number of registered engines.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.engines)
}

// ShutdownAll shuts down every ready engine.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, entry := range r.engines {
		if entry.Engine == nil || entry.Status != StatusReady {
			continue
		}
		r.logger.Info("shutting down engine", "engine_id", id)
		if err := entry.Engine.Shutdown(ctx); err != nil {
			r.logger.Error("failed to shutdown engine", "engine_id", id, "error", err)
			errs = append(errs, fmt.Errorf("engine %s: %w", id, err))
		}
		entry.Status = StatusShutdown
		r.engines[id] = entry
	}

	return errors.Join(errs...)
}
