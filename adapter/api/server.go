// Package api exposes the scoring engine and the stored backlog over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/ratelimit"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Version is reported by the info endpoint.
const Version = "2.0.0"

// Server is the HTTP API server.
type Server struct {
	router *chi.Mux
	server *http.Server
	logger *slog.Logger
	deps   Dependencies
	rules  Rules
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Rules are the per-client quotas of the rate limited endpoints.
type Rules struct {
	Analyze ratelimit.Rule
	Export  ratelimit.Rule
}

// DefaultRules returns 30 requests per minute for scoring and 10 for export.
func DefaultRules() Rules {
	return Rules{Analyze: ratelimit.PerMinute(30), Export: ratelimit.PerMinute(10)}
}

// Dependencies are the use cases and infrastructure the routes call.
type Dependencies struct {
	Analyze        *queries.AnalyzeTasksHandler
	Suggest        *queries.SuggestTasksHandler
	ListStrategies *queries.ListStrategiesHandler
	ListTasks      *queries.ListTasksHandler
	CreateTask     *commands.CreateTaskHandler
	DeleteTask     *commands.DeleteTaskHandler
	ImportTasks    *commands.ImportTasksHandler
	// DefaultStrategy is reported by the strategies endpoint.
	DefaultStrategy string

	Limiter ratelimit.Limiter
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry
	// Now defaults to time.Now.
	Now func() time.Time
}

// DependenciesFrom takes every dependency from a wired container.
func DependenciesFrom(c *app.Container) Dependencies {
	return Dependencies{
		Analyze:         c.AnalyzeTasksHandler,
		Suggest:         c.SuggestTasksHandler,
		ListStrategies:  c.ListStrategiesHandler,
		ListTasks:       c.ListTasksHandler,
		CreateTask:      c.CreateTaskHandler,
		DeleteTask:      c.DeleteTaskHandler,
		ImportTasks:     c.ImportTasksHandler,
		DefaultStrategy: c.Strategies.Default(),
		Limiter:         c.Limiter,
		Metrics:         c.Metrics,
		Health:          c.Health,
	}
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies, rules Rules, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.NewMemory()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewInMemoryMetrics()
	}
	if deps.Health == nil {
		deps.Health = observability.NewHealthRegistry()
	}

	s := &Server{
		logger: logger,
		deps:   deps,
		rules:  rules,
	}
	s.setupRouter(cfg)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter(cfg ServerConfig) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestContext)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID", correlationHeader},
		ExposedHeaders: []string{"X-Request-ID", correlationHeader, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleInfo)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/strategies", s.handleStrategies)
			r.Get("/time-context", s.handleTimeContext)
			r.Post("/fatigue", s.handleFatigue)

			r.With(s.rateLimit("analyze", s.rules.Analyze)).Post("/analyze", s.handleAnalyze)
			r.With(s.rateLimit("analyze", s.rules.Analyze)).Post("/suggest", s.handleSuggest)
			r.With(s.rateLimit("export", s.rules.Export)).Post("/export/{format}", s.handleExport)
		})

		r.Route("/backlog", func(r chi.Router) {
			r.Get("/", s.handleListBacklog)
			r.Post("/", s.handleCreateBacklogTask)
			r.Post("/import", s.handleImportBacklog)
			r.With(s.rateLimit("analyze", s.rules.Analyze)).Post("/analyze", s.handleAnalyzeBacklog)
			r.Delete("/{id}", s.handleDeleteBacklogTask)
		})
	})

	s.router = r
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.deps.Health.Check(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, s.deps.Metrics.Snapshot())
}
