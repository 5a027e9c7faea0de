package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Discovery finds plugin manifests on disk.
type Discovery struct {
	SearchPaths []string
	logger      *slog.Logger
}

// NewDiscovery creates a discovery service over searchPaths.
func NewDiscovery(searchPaths []string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{SearchPaths: searchPaths, logger: logger}
}

// DiscoveredPlugin is a plugin directory and its manifest.
type DiscoveredPlugin struct {
	Path     string
	Manifest *Manifest
}

// Discover scans every search path for subdirectories holding engine.json.
// Unreadable paths and invalid manifests are logged and skipped; the first
// plugin seen for an engine ID wins.
func (d *Discovery) Discover() []DiscoveredPlugin {
	var plugins []DiscoveredPlugin
	seen := make(map[string]bool)

	for _, searchPath := range d.SearchPaths {
		found, err := d.discoverInPath(searchPath)
		if err != nil {
			d.logger.Warn("failed to search path", "path", searchPath, "error", err)
			continue
		}

		for _, p := range found {
			if seen[p.Manifest.ID] {
				d.logger.Warn("duplicate engine ID found", "engine_id", p.Manifest.ID, "path", p.Path)
				continue
			}
			seen[p.Manifest.ID] = true
			plugins = append(plugins, p)
		}
	}

	d.logger.Debug("plugin discovery complete", "found", len(plugins))
	return plugins
}

func (d *Discovery) discoverInPath(searchPath string) ([]DiscoveredPlugin, error) {
	info, err := os.Stat(searchPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", searchPath)
	}

	entries, err := os.ReadDir(searchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var plugins []DiscoveredPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dir := filepath.Join(searchPath, entry.Name())
		manifestPath := filepath.Join(dir, DefaultManifestFilename)
		if _, err := os.Stat(manifestPath); err != nil {
			continue
		}

		manifest, err := LoadManifest(manifestPath)
		if err != nil {
			d.logger.Warn("failed to load manifest", "path", manifestPath, "error", err)
			continue
		}

		plugins = append(plugins, DiscoveredPlugin{Path: dir, Manifest: manifest})
		d.logger.Debug("discovered plugin", "engine_id", manifest.ID, "path", dir)
	}
	return plugins, nil
}

// SearchPaths builds the plugin search path list. configured is a
// list separated by the OS path list separator and takes precedence over
// ~/.taskrank/engines.
func SearchPaths(configured string) []string {
	var paths []string
	for _, p := range filepath.SplitList(configured) {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".taskrank", "engines"))
	}
	return paths
}
