package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/cosmic-nutrition/backend/config"
	"github.com/pageza/cosmic-nutrition/backend/internal/database"
	"github.com/pageza/cosmic-nutrition/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last applied migration")
	dir := flag.String("dir", "", "Migrations directory (defaults to DB_MIGRATIONS_DIR)")
	flag.Parse()

	log := logging.NewLogger(config.LogConfig{Level: "info", Format: "text"}, os.Stderr)

	if err := run(*rollback, *dir, log); err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(rollback bool, dir string, log *slog.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg config.DatabaseConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if dir == "" {
		dir = cfg.MigrationsDir
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.WaitForDatabase(context.Background(), db, cfg.ConnectTimeout, cfg.ConnectInterval, log); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if rollback {
		return rollbackLast(context.Background(), db, dir, log)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to open gorm session: %w", err)
	}
	if err := database.RunMigrations(gdb, dir, log); err != nil {
		return err
	}
	log.Info("migrations complete")
	return nil
}

// rollbackLast runs the rollback file paired with the most recently applied
// migration and forgets it, in one transaction.
func rollbackLast(ctx context.Context, db *sql.DB, dir string, log *slog.Logger) error {
	var version, name string
	err := db.QueryRowContext(ctx, `
		SELECT version, name
		FROM schema_migrations
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&version, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("no migrations to rollback")
			return nil
		}
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackFile := strings.TrimSuffix(name, ".sql") + database.RollbackSuffix
	content, err := os.ReadFile(filepath.Join(dir, rollbackFile))
	if err != nil {
		return fmt.Errorf("failed to read rollback file: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute rollback %s: %w", rollbackFile, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}

	log.Info("rolled back migration", slog.String("file", name))
	return nil
}
