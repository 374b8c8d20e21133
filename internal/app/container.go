package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	prefsApp "github.com/felixgeelhaar/slotwise/internal/preferences/application"
	prefsDomain "github.com/felixgeelhaar/slotwise/internal/preferences/domain"
	prefsPersistence "github.com/felixgeelhaar/slotwise/internal/preferences/infrastructure/persistence"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/slotwise/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/slotwise/internal/scheduling/infrastructure/resilience"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/slotwise/pkg/config"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *time.Location

	// Observability
	Metrics         observability.Metrics
	MetricsRegistry *prometheus.Registry
	Health          *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, nil when caches are in process
	RedisClient *redis.Client

	// Repositories
	TaskRepo        domain.TaskRepository
	TodoRepo        domain.TodoRepository
	PreferencesRepo prefsDomain.Repository

	// Breaker-guarded sources read by the scheduler
	TaskSource domain.TaskSource
	TodoSource domain.TodoSource

	// Services
	PreferencesService *prefsApp.Service

	// Query Handlers
	FindBestSlotHandler *queries.FindBestSlotHandler
	RankDaysHandler     *queries.RankDaysHandler

	// Command Handlers
	AddTaskHandler *commands.AddTaskHandler
	AddTodoHandler *commands.AddTodoHandler
}

// NewContainer wires the application: it opens the database, applies
// migrations, connects Redis when configured and builds the handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:          cfg,
		Logger:          logger,
		Location:        loc,
		MetricsRegistry: prometheus.NewRegistry(),
		Health:          observability.NewHealthRegistry(),
	}
	c.MetricsRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Metrics = observability.NewPrometheusMetrics(c.MetricsRegistry)

	// Connect to the database
	driver, err := database.ParseDriver(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "versions", applied)
	}
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	// Connect to Redis (optional in development)
	if cfg.UsesRedis() {
		if err := c.connectRedis(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	// Create repositories
	taskRepo := schedulingPersistence.NewTaskRepository(conn, loc)
	todoRepo := schedulingPersistence.NewTodoRepository(conn, loc)
	c.TaskRepo = taskRepo
	c.TodoRepo = todoRepo
	c.PreferencesRepo = prefsPersistence.NewRepository(conn)

	// Guard the scheduler's reads
	breakerConfig := resilience.DefaultBreakerConfig()
	breakerConfig.Enabled = cfg.BreakerEnabled
	if cfg.BreakerFailureThreshold > 0 {
		breakerConfig.FailureThreshold = uint32(cfg.BreakerFailureThreshold)
	}
	if cfg.BreakerTimeout > 0 {
		breakerConfig.Timeout = cfg.BreakerTimeout
	}
	c.TaskSource = resilience.NewTaskSource(taskRepo, breakerConfig, logger, c.Metrics)
	c.TodoSource = resilience.NewTodoSource(todoRepo, breakerConfig, logger, c.Metrics)
	if guarded, ok := c.TaskSource.(*resilience.TaskSource); ok {
		c.Health.Register("tasks_source", observability.CircuitHealthChecker(func() string { return guarded.State().String() }))
	}
	if guarded, ok := c.TodoSource.(*resilience.TodoSource); ok {
		c.Health.Register("todos_source", observability.CircuitHealthChecker(func() string { return guarded.State().String() }))
	}

	// Create services
	c.PreferencesService = prefsApp.NewService(
		c.PreferencesRepo,
		newCache[prefsDomain.Preferences](c, "prefs", cfg.PreferencesCacheTTL),
		logger,
		c.Metrics,
	)

	// Create query handlers
	slotConfig := queries.DefaultSlotSearchConfig()
	slotConfig.LookaheadDays = cfg.LookaheadDays
	slotConfig.Location = loc
	c.FindBestSlotHandler = queries.NewFindBestSlotHandler(
		c.TaskSource,
		c.TodoSource,
		c.PreferencesService,
		newCache[domain.ScheduleSuggestion](c, "slots", cfg.SlotCacheTTL),
		slotConfig,
		logger,
		c.Metrics,
	)
	c.RankDaysHandler = queries.NewRankDaysHandler(
		c.TaskSource,
		newCache[[]domain.RankedDay](c, "days", cfg.RankCacheTTL),
		logger,
		c.Metrics,
	)

	// Writes drop the cached results they make stale
	c.PreferencesService.InvalidateOnUpdate(c.FindBestSlotHandler)

	// Create command handlers
	c.AddTaskHandler = commands.NewAddTaskHandler(c.TaskRepo, logger, c.Metrics, c.FindBestSlotHandler, c.RankDaysHandler)
	c.AddTodoHandler = commands.NewAddTodoHandler(c.TodoRepo, logger, c.Metrics, c.FindBestSlotHandler)

	return c, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, caches will stay in process", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, caches will stay in process", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// newCache returns a Redis-backed cache when Redis is connected and an
// in-process LRU otherwise.
func newCache[V any](c *Container, name string, ttl time.Duration) cache.Cache[V] {
	if c.RedisClient != nil {
		return cache.NewRedis[V](c.RedisClient, "slotwise:"+name, ttl, c.Logger)
	}
	return cache.NewMemory[V](c.Config.CacheSize, ttl)
}

// UserID returns the configured single-user identity.
func (c *Container) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Config.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid SLOTWISE_USER_ID %q: %w", c.Config.UserID, err)
	}
	return id, nil
}

// Close releases the database and Redis connections.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
