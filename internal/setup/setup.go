// Package setup bootstraps the shared dependencies every binary needs.
package setup

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/craftlist/craftlist/internal/database"
	"github.com/craftlist/craftlist/internal/database/dbretry"
	"github.com/craftlist/craftlist/internal/database/migrations"
	"github.com/craftlist/craftlist/internal/redis"
	"github.com/craftlist/craftlist/internal/setup/config"
	"github.com/craftlist/craftlist/internal/setup/logger"
	"github.com/craftlist/craftlist/internal/status"
	"github.com/redis/rueidis"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config        *config.Config  // Application configuration
	Logger        *zap.Logger     // Main application logger
	DBLogger      *zap.Logger     // Database-specific logger
	DB            database.Client // Database connection pool, nil when the database is disabled
	RedisManager  *redis.Manager  // Redis connection manager
	StatusClient  rueidis.Client  // Redis client for worker status reporting
	StatusChecker *status.Checker // Cached liveness checker for listed servers
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context, component string) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging is initialized next to capture setup issues
	mainLogger, dbLogger, err := logger.New(&cfg.Common.Debug, component)
	if err != nil {
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, mainLogger)

	statusClient, err := redisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		return nil, err
	}

	// An unset database host disables listings persistence but leaves the
	// cached liveness checks usable for ad-hoc lookups.
	var db database.Client

	dbretry.Configure(
		cfg.Common.Retry.MaxRetries,
		time.Duration(cfg.Common.Retry.Delay)*time.Millisecond,
		time.Duration(cfg.Common.Retry.MaxDelay)*time.Millisecond,
	)

	if cfg.Common.PostgreSQL.Enabled() {
		db, err = checkAndRunMigrations(ctx, &cfg.Common.PostgreSQL, dbLogger)
		if err != nil {
			return nil, err
		}
	} else {
		mainLogger.Warn("PostgreSQL host not configured, database-backed features are disabled")
	}

	// Check results live in the shared cache database so every replica sees
	// the same cache window per address.
	cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, err
	}

	statusCache := status.NewRedisCache(cacheClient,
		time.Duration(cfg.Common.StatusAPI.CacheTTL)*time.Minute, mainLogger)

	statusAPI := status.NewClient(&cfg.Common.StatusAPI, mainLogger)
	checker := status.NewChecker(&cfg.Common.StatusAPI, statusAPI, statusCache, mainLogger)

	return &App{
		Config:        cfg,
		Logger:        mainLogger,
		DBLogger:      dbLogger,
		DB:            db,
		RedisManager:  redisManager,
		StatusClient:  statusClient,
		StatusChecker: checker,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(_ context.Context) {
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}

// checkAndRunMigrations runs pending database migrations before handing out
// the connection.
func checkAndRunMigrations(ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger) (database.Client, error) {
	tempDB, err := database.NewConnection(ctx, cfg, dbLogger, false)
	if err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(tempDB.DB(), migrations.Migrations)

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		_ = tempDB.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	if len(ms.Unapplied()) == 0 {
		return tempDB, nil
	}

	_ = tempDB.Close()

	return database.NewConnection(ctx, cfg, dbLogger, true)
}
