package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/felixgeelhaar/taskrank/internal/engine/enginerpc"
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

// Loader starts plugin binaries with go-plugin and keeps their clients so
// they can be killed on shutdown.
type Loader struct {
	mu         sync.Mutex
	logger     *slog.Logger
	clients    map[string]*plugin.Client
	secureMode bool
}

// NewLoader creates a plugin loader. With secureMode set, manifests that
// carry a checksum have it verified before the binary is started.
func NewLoader(logger *slog.Logger, secureMode bool) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:     logger,
		clients:    make(map[string]*plugin.Client),
		secureMode: secureMode,
	}
}

// Load starts the binary described by manifest and dispenses its engine.
func (l *Loader) Load(manifest *Manifest) (sdk.Engine, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest is required")
	}

	binaryPath := manifest.BinaryAbsPath()
	path, err := l.validateBinaryPath(binaryPath)
	if err != nil {
		return nil, sdk.NewLoadError(binaryPath, "binary path validation failed", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, sdk.NewLoadError(path, "binary not found", err)
	}
	if !info.Mode().IsRegular() {
		return nil, sdk.NewLoadError(path, "binary path is not a regular file", nil)
	}

	if l.secureMode && manifest.Checksum != "" {
		if err := l.verifyChecksum(path, manifest.Checksum); err != nil {
			return nil, sdk.NewLoadError(path, "checksum verification failed", err)
		}
	}

	l.logger.Info("loading plugin", "engine_id", manifest.ID, "binary", path)

	// #nosec G204 -- path is validated by validateBinaryPath
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  enginerpc.HandshakeConfig,
		Plugins:          enginerpc.PluginMap(nil),
		Cmd:              exec.Command(path),
		Logger:           newHclogAdapter(l.logger),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, sdk.NewLoadError(path, "failed to connect", err)
	}

	raw, err := rpcClient.Dispense(enginerpc.PluginName)
	if err != nil {
		client.Kill()
		return nil, sdk.NewLoadError(path, "failed to dispense", err)
	}

	engine, ok := raw.(sdk.Engine)
	if !ok {
		client.Kill()
		return nil, sdk.NewLoadError(path, "plugin does not implement the strategy engine interface", nil)
	}

	l.mu.Lock()
	l.clients[manifest.ID] = client
	l.mu.Unlock()

	l.logger.Info("plugin loaded", "engine_id", manifest.ID)
	return engine, nil
}

// Register adds discovered plugins to reg as lazily started engines.
func (l *Loader) Register(reg *Registry, plugins []DiscoveredPlugin) {
	for _, p := range plugins {
		manifest := p.Manifest
		err := reg.RegisterFactory(manifest.ID, func() (sdk.Engine, error) {
			return l.Load(manifest)
		}, manifest)
		if err != nil {
			l.logger.Warn("skipping plugin", "engine_id", manifest.ID, "error", err)
		}
	}
}

// Unload kills a single plugin process.
func (l *Loader) Unload(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if client, ok := l.clients[id]; ok {
		client.Kill()
		delete(l.clients, id)
		l.logger.Info("plugin unloaded", "engine_id", id)
	}
}

// UnloadAll kills every plugin process.
func (l *Loader) UnloadAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, client := range l.clients {
		client.Kill()
		l.logger.Info("plugin unloaded", "engine_id", id)
	}
	l.clients = make(map[string]*plugin.Client)
}

// IsLoaded reports whether a plugin process is running.
func (l *Loader) IsLoaded(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.clients[id]
	return ok
}

// validateBinaryPath requires an absolute path free of quotes and
// backslashes, then applies the shared path checks.
func (l *Loader) validateBinaryPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("binary path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("binary path must be absolute: %s", path)
	}
	if strings.ContainsAny(path, "\\'\"") {
		return "", fmt.Errorf("binary path contains forbidden character: %s", path)
	}
	return security.CleanPath(path)
}

// verifyChecksum compares the SHA-256 of path against "sha256:HEX" or "HEX".
func (l *Loader) verifyChecksum(path, expected string) error {
	algorithm, hash := "sha256", expected
	if before, after, found := strings.Cut(expected, ":"); found {
		algorithm, hash = strings.ToLower(before), after
	}
	if algorithm != "sha256" {
		return fmt.Errorf("unsupported checksum algorithm: %s", algorithm)
	}

	file, err := security.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	computed := hex.EncodeToString(hasher.Sum(nil))
	if !strings.EqualFold(computed, hash) {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", hash, computed)
	}
	return nil
}

// hclogAdapter routes go-plugin's hclog output into slog.
type hclogAdapter struct {
	logger *slog.Logger
	name   string
	args   []interface{}
}

func newHclogAdapter(logger *slog.Logger) *hclogAdapter {
	return &hclogAdapter{logger: logger, name: "taskrank.plugin"}
}

func (h *hclogAdapter) with(args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(h.args)+len(args)+2)
	out = append(out, "logger", h.name)
	out = append(out, h.args...)
	return append(out, args...)
}

func (h *hclogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Info:
		h.Info(msg, args...)
	case hclog.Warn:
		h.Warn(msg, args...)
	case hclog.Error:
		h.Error(msg, args...)
	default:
		h.Debug(msg, args...)
	}
}

func (h *hclogAdapter) Trace(msg string, args ...interface{}) { h.logger.Debug(msg, h.with(args)...) }
func (h *hclogAdapter) Debug(msg string, args ...interface{}) { h.logger.Debug(msg, h.with(args)...) }
func (h *hclogAdapter) Info(msg string, args ...interface{})  { h.logger.Info(msg, h.with(args)...) }
func (h *hclogAdapter) Warn(msg string, args ...interface{})  { h.logger.Warn(msg, h.with(args)...) }
func (h *hclogAdapter) Error(msg string, args ...interface{}) { h.logger.Error(msg, h.with(args)...) }

func (h *hclogAdapter) IsTrace() bool { return false }
func (h *hclogAdapter) IsDebug() bool { return true }
func (h *hclogAdapter) IsInfo() bool  { return true }
func (h *hclogAdapter) IsWarn() bool  { return true }
func (h *hclogAdapter) IsError() bool { return true }

func (h *hclogAdapter) ImpliedArgs() []interface{} { return h.args }

func (h *hclogAdapter) With(args ...interface{}) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: h.name, args: append(append([]interface{}{}, h.args...), args...)}
}

func (h *hclogAdapter) Name() string { return h.name }

func (h *hclogAdapter) Named(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: h.name + "." + name, args: h.args}
}

func (h *hclogAdapter) ResetNamed(name string) hclog.Logger {
	return &hclogAdapter{logger: h.logger, name: name, args: h.args}
}

func (h *hclogAdapter) SetLevel(hclog.Level) {}

func (h *hclogAdapter) GetLevel() hclog.Level { return hclog.Debug }

func (h *hclogAdapter) StandardLogger(*hclog.StandardLoggerOptions) *log.Logger {
	return slog.NewLogLogger(h.logger.Handler(), slog.LevelInfo)
}

func (h *hclogAdapter) StandardWriter(*hclog.StandardLoggerOptions) io.Writer {
	return os.Stderr
}
