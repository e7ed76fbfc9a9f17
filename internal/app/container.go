package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	dashboardApp "github.com/felixgeelhaar/tasksync/internal/dashboard/application"
	dashboardDomain "github.com/felixgeelhaar/tasksync/internal/dashboard/domain"
	"github.com/felixgeelhaar/tasksync/internal/identity/application/auth"
	"github.com/felixgeelhaar/tasksync/internal/identity/application/session"
	identityDomain "github.com/felixgeelhaar/tasksync/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/tasksync/internal/identity/infrastructure/persistence"
	"github.com/felixgeelhaar/tasksync/internal/productivity/application/services"
	"github.com/felixgeelhaar/tasksync/internal/productivity/domain/task"
	sharedApplication "github.com/felixgeelhaar/tasksync/internal/shared/application"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/backend"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tasksync/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/tasksync/pkg/config"
	"github.com/felixgeelhaar/tasksync/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics

	// Local store
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis, only when sessions live there
	RedisClient *redis.Client

	Bus        *eventbus.Bus
	UnitOfWork sharedApplication.UnitOfWork
	Backend    *backend.Client

	// Repositories
	TaskRepo     task.Repository
	UserRepo     identityDomain.UserRepository
	SnapshotRepo dashboardDomain.Repository
	SessionStore identityDomain.SessionStore

	// Services
	Sessions         *session.Manager
	TaskService      *services.TaskService
	AuthService      *auth.Service
	DashboardService *dashboardApp.Service
}

// NewContainer opens the local store, runs migrations and wires every service.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Bus:     eventbus.New(logger),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("local store opened", "driver", c.DBDriver.String())

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := c.initRepositories(); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initSessionStore(ctx); err != nil {
		c.Close()
		return nil, err
	}

	var sealer crypto.Sealer
	if cfg.EncryptionKey != "" {
		aead, err := crypto.NewAESGCMFromBase64Key(cfg.EncryptionKey)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("invalid TASKSYNC_ENCRYPTION_KEY: %w", err)
		}
		sealer = aead
	} else if !cfg.IsDevelopment() {
		logger.Warn("session values are stored unencrypted; set TASKSYNC_ENCRYPTION_KEY")
	}
	c.Sessions = session.NewManager(c.SessionStore, sealer, logger)

	client, err := backend.NewClient(backend.Config{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.APITimeout,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
		Logger:           logger,
		Metrics:          c.Metrics,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	client.SetTokenSource(c.Sessions.TokenSource(client))
	c.Backend = client

	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.TaskService = services.NewTaskService(c.TaskRepo, client, c.UnitOfWork, c.Bus, logger, c.Metrics)
	c.AuthService = auth.NewService(client, c.UserRepo, c.Sessions, c.Bus, logger)
	c.DashboardService = dashboardApp.NewService(c.SnapshotRepo, client, c.Bus, logger)

	return c, nil
}

func (c *Container) initRepositories() error {
	factory := NewRepositoryFactory(c.DBConn, c.Bus)

	taskRepo, err := factory.TaskRepository()
	if err != nil {
		return fmt.Errorf("failed to create task repository: %w", err)
	}
	c.TaskRepo = taskRepo

	userRepo, err := factory.UserRepository()
	if err != nil {
		return fmt.Errorf("failed to create user repository: %w", err)
	}
	c.UserRepo = userRepo

	snapshotRepo, err := factory.SnapshotRepository()
	if err != nil {
		return fmt.Errorf("failed to create dashboard repository: %w", err)
	}
	c.SnapshotRepo = snapshotRepo

	store, err := factory.SessionStore()
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	c.SessionStore = store
	return nil
}

// initSessionStore swaps the database session store for Redis when configured.
// In development an unreachable Redis falls back to the database store.
func (c *Container) initSessionStore(ctx context.Context) error {
	if !c.Config.UsesRedisSessions() {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, sessions stay in the local store", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, sessions stay in the local store", "error", err)
		return nil
	}

	c.RedisClient = client
	c.SessionStore = identityPersistence.NewRedisSessionStore(client, "")
	c.Logger.Info("connected to Redis")
	return nil
}

// Close releases the Redis client and the local store.
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing local store", "error", err)
		} else {
			c.Logger.Debug("local store closed", "driver", c.DBDriver.String())
		}
	}
}
