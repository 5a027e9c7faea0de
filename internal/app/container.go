// Package app wires the application: storage, event bus, rate limiting,
// strategy engines and the use-case handlers every adapter shares.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/taskrank/internal/engine/builtin"
	"github.com/felixgeelhaar/taskrank/internal/engine/registry"
	"github.com/felixgeelhaar/taskrank/internal/engine/runtime"
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/holidays"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/profile"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/ratelimit"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Options tune container construction per entry point.
type Options struct {
	// ProfilePath overrides TASKRANK_STRATEGIES_FILE.
	ProfilePath string
	// Offline skips Redis and RabbitMQ. The CLI uses it for one-shot
	// commands whose events and quotas never leave the process.
	Offline bool
}

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	DB         database.Connection
	UnitOfWork *database.UnitOfWork
	TaskRepo   task.Repository

	// Infrastructure
	RedisClient *redis.Client
	Publisher   eventbus.Publisher
	Bus         *eventbus.InProcessBus
	Limiter     ratelimit.Limiter
	Metrics     *observability.InMemoryMetrics
	Health      *observability.HealthRegistry

	// Strategy engines
	EngineRegistry *registry.Registry
	EngineExecutor *runtime.Executor
	EngineLoader   *registry.Loader
	Profile        *profile.Profile

	// Scoring
	Strategies    *queries.StrategyResolver
	Holidays      *queries.HolidayResolver
	EngineBuilder *queries.EngineBuilder

	// Query handlers
	AnalyzeTasksHandler   *queries.AnalyzeTasksHandler
	SuggestTasksHandler   *queries.SuggestTasksHandler
	ListStrategiesHandler *queries.ListStrategiesHandler
	ListTasksHandler      *queries.ListTasksHandler

	// Command handlers
	CreateTaskHandler  *commands.CreateTaskHandler
	DeleteTaskHandler  *commands.DeleteTaskHandler
	ImportTasksHandler *commands.ImportTasksHandler

	// SkipWeekends is the effective default after profile overrides.
	SkipWeekends bool
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:       cfg,
		Logger:       logger,
		Metrics:      observability.NewInMemoryMetrics(),
		Health:       observability.NewHealthRegistry(),
		SkipWeekends: cfg.SkipWeekends,
	}

	if err := c.loadProfile(opts); err != nil {
		return nil, err
	}

	conn, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DB = conn
	c.Health.Register("database", true, observability.PingChecker(conn.Ping))

	factory := NewRepositoryFactory(conn)
	c.TaskRepo, err = factory.TaskRepository()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create task repository: %w", err)
	}
	c.UnitOfWork = factory.UnitOfWork()

	c.Bus = eventbus.NewInProcessBus(logger)
	if opts.Offline {
		c.Limiter = ratelimit.NewMemory()
		c.Publisher = c.Bus
	} else {
		if err := c.connectRedis(ctx); err != nil {
			c.Close()
			return nil, err
		}
		if err := c.connectBroker(); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.initEngines(ctx)
	c.initScoring()

	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo)
	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.UnitOfWork)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.UnitOfWork)
	c.ImportTasksHandler = commands.NewImportTasksHandler(c.TaskRepo, c.UnitOfWork)

	logger.Info("container ready",
		"driver", conn.Driver(),
		"engines", c.EngineRegistry.Count(),
		"default_strategy", c.Strategies.Default(),
	)
	return c, nil
}

func (c *Container) loadProfile(opts Options) error {
	path := opts.ProfilePath
	if path == "" {
		path = c.Config.StrategiesFile
	}
	if path == "" {
		return nil
	}
	p, err := profile.Load(path)
	if err != nil {
		return err
	}
	c.Profile = p
	if p.SkipWeekends != nil {
		c.SkipWeekends = *p.SkipWeekends
	}
	c.Logger.Info("loaded profile", "path", path, "strategies", len(p.Strategies))
	return nil
}

// connectRedis backs the rate limiter with Redis when configured. Outside
// production an unreachable server only costs the shared quota.
func (c *Container) connectRedis(ctx context.Context) error {
	memory := ratelimit.NewMemory()
	c.Limiter = memory
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, rate limits are per process", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, rate limits are per process", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Limiter = &ratelimit.Fallback{
		Primary:   ratelimit.NewRedis(client, "taskrank:ratelimit"),
		Secondary: memory,
		Logger:    c.Logger,
	}
	c.Health.Register("redis", false, observability.PingChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectBroker() error {
	if c.Config.RabbitMQURL == "" {
		c.Publisher = c.Bus
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsProduction() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, events stay in process", "error", err)
		c.Publisher = c.Bus
		return nil
	}
	c.Publisher = eventbus.Mirrored{Primary: publisher, Mirror: c.Bus}
	c.Health.Register("rabbitmq", false, observability.PingChecker(publisher.Ping))
	return nil
}

func (c *Container) initEngines(ctx context.Context) {
	c.EngineRegistry = registry.NewRegistry(c.Logger)

	adaptive := builtin.NewAdaptiveEngine()
	settings := c.Profile.EngineConfig(builtin.AdaptiveEngineID)
	if err := adaptive.Initialize(ctx, sdk.NewEngineConfig(builtin.AdaptiveEngineID, settings)); err != nil {
		c.Logger.Warn("ignoring engine settings", "engine_id", builtin.AdaptiveEngineID, "error", err)
		adaptive = builtin.NewAdaptiveEngine()
	}
	if err := c.EngineRegistry.RegisterBuiltin(adaptive); err != nil {
		c.Logger.Warn("failed to register built-in engine", "error", err)
	}

	c.EngineLoader = registry.NewLoader(c.Logger, c.Config.IsProduction())
	discovery := registry.NewDiscovery(registry.SearchPaths(c.Config.EngineSearchPath), c.Logger)
	c.EngineLoader.Register(c.EngineRegistry, discovery.Discover())

	if c.Profile != nil {
		for id, settings := range c.Profile.Engines {
			if id == builtin.AdaptiveEngineID {
				continue
			}
			if err := c.EngineRegistry.Configure(id, settings); err != nil {
				c.Logger.Warn("ignoring engine settings", "engine_id", id, "error", err)
			}
		}
	}

	execCfg := runtime.DefaultExecutorConfig()
	if c.Config.EngineTimeout > 0 {
		execCfg.CallTimeout = c.Config.EngineTimeout
	}
	c.EngineExecutor = runtime.NewExecutor(c.EngineRegistry, runtime.NewMetricsCollector(), c.Logger, execCfg)
	c.Health.Register("engines", false, c.checkEngines)
}

// checkEngines reports degraded when any loaded engine is unhealthy.
func (c *Container) checkEngines(ctx context.Context) observability.HealthCheckResult {
	for _, entry := range c.EngineRegistry.List() {
		if entry.Status != registry.StatusReady {
			continue
		}
		id := entry.Metadata().ID
		status, err := c.EngineExecutor.HealthCheck(ctx, id)
		if err != nil {
			return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: fmt.Sprintf("%s: %v", id, err)}
		}
		if !status.Healthy {
			return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: fmt.Sprintf("%s: %s", id, status.Message)}
		}
	}
	return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
}

func (c *Container) initScoring() {
	var prof queries.Profile
	defaultStrategy := c.Config.Strategy
	holidaysFile := c.Config.HolidaysFile
	if c.Profile != nil {
		prof = c.Profile
		if c.Profile.DefaultStrategy != "" {
			defaultStrategy = c.Profile.DefaultStrategy
		}
		if holidaysFile == "" {
			holidaysFile = c.Profile.HolidaysFile
		}
	}

	c.Strategies = queries.NewStrategyResolver(queries.StrategyResolverConfig{
		DefaultStrategy: defaultStrategy,
		Profile:         prof,
		Catalog:         c.EngineRegistry,
		Engines:         c.EngineExecutor,
		Logger:          c.Logger,
	})
	c.Holidays = queries.NewHolidayResolver(prof, c.holidaySource(holidaysFile), c.Logger)
	c.EngineBuilder = queries.NewEngineBuilder(queries.EngineBuilderConfig{
		Strategies:   c.Strategies,
		Holidays:     c.Holidays,
		SkipWeekends: c.SkipWeekends,
		Publisher:    c.Publisher,
		Logger:       c.Logger,
		Metrics:      c.Metrics,
	})

	c.AnalyzeTasksHandler = queries.NewAnalyzeTasksHandler(c.EngineBuilder)
	c.SuggestTasksHandler = queries.NewSuggestTasksHandler(c.EngineBuilder)
	c.ListStrategiesHandler = queries.NewListStrategiesHandler(c.Strategies)
}

// holidaySource prefers a local ICS file over a CalDAV calendar. It returns
// nil when neither is configured.
func (c *Container) holidaySource(file string) calendar.HolidaySource {
	if file != "" {
		c.Logger.Info("using holiday file", "path", file)
		return holidays.NewICSFile(file)
	}
	if !c.Config.CalDAVEnabled() {
		return nil
	}
	c.Logger.Info("using CalDAV holiday calendar", "url", c.Config.CalDAVURL)
	source := holidays.NewCalDAV(holidays.CalDAVConfig{
		URL:          c.Config.CalDAVURL,
		Username:     c.Config.CalDAVUsername,
		Password:     c.Config.CalDAVPassword,
		Token:        c.Config.CalDAVToken,
		CalendarPath: c.Config.CalDAVCalendarPath,
		Timeout:      c.Config.CalDAVTimeout,
	}, c.Logger)
	return holidays.NewGuarded("caldav", source, c.EngineExecutor)
}

// Close releases all resources.
func (c *Container) Close() {
	ctx := context.Background()

	if c.EngineRegistry != nil {
		if err := c.EngineRegistry.ShutdownAll(ctx); err != nil {
			c.Logger.Warn("error shutting down engines", "error", err)
		}
	}
	if c.EngineLoader != nil {
		c.EngineLoader.UnloadAll()
	}

	if _, ok := c.Publisher.(eventbus.Mirrored); ok {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		} else {
			c.Logger.Info("database connection closed")
		}
	}
}
