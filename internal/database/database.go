package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/pageza/cosmic-nutrition/backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens the database selected by cfg.Driver. Postgres connections go
// through lib/pq and share its pool with gorm.
func New(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case "postgres":
		log.Info("connecting to database", slog.String("driver", "postgres"),
			slog.String("host", cfg.Host), slog.String("port", cfg.Port), slog.String("user", cfg.User))

		sqlDB, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := WaitForDatabase(context.Background(), sqlDB, cfg.ConnectTimeout, cfg.ConnectInterval, log); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("error connecting to the database: %w", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("error opening gorm session: %w", err)
		}
		return db, nil

	case "sqlite":
		log.Info("connecting to database", slog.String("driver", "sqlite"), slog.String("path", cfg.SQLitePath))

		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

const pingTimeout = 5 * time.Second

// WaitForDatabase pings db until it answers or timeout elapses, sleeping
// interval between attempts. It returns the last ping error on timeout.
// A zero timeout makes a single attempt.
func WaitForDatabase(ctx context.Context, db *sql.DB, timeout, interval time.Duration, log *slog.Logger) error {
	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.Now().Add(timeout)

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			if attempt > 1 {
				log.Info("database is ready", slog.Int("attempts", attempt))
			}
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("database not reachable after %d attempts: %w", attempt, err)
		}

		wait := min(interval, remaining)
		log.Warn("database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", wait),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for database: %w (last error: %v)", ctx.Err(), err)
		case <-time.After(wait):
		}
	}
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
