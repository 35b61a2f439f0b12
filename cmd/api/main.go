package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/cosmic-nutrition/backend/config"
	"github.com/pageza/cosmic-nutrition/backend/internal/api"
	"github.com/pageza/cosmic-nutrition/backend/internal/database"
	"github.com/pageza/cosmic-nutrition/backend/internal/logging"
	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/server"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Log, os.Stderr)
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
		return err
	}

	auth, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		return err
	}

	// A nil generator leaves the analyze route answering 503.
	var generator service.TextGenerator
	if cfg.Gemini.APIKey != "" {
		generator = service.NewGeminiClient(cfg.Gemini)
	} else {
		logger.Warn("no Gemini API key configured, meal analysis is disabled")
	}

	var store service.ObjectStore
	if cfg.Storage.Bucket != "" {
		s3cfg, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		store = s3cfg
	} else {
		logger.Warn("no S3 bucket configured, meal export is disabled")
	}

	meals := service.NewMealService(db)
	svc := api.Services{
		Auth:     auth,
		Analysis: service.NewAnalysisService(generator, logger),
		Meals:    meals,
		Users:    service.NewUserService(db),
		Export:   service.NewExportService(meals, store, cfg.Storage.ExportTTL),
	}

	if cfg.Redis.Enabled() {
		var client *redis.Client
		client, err = database.NewRedisClient(cfg.Redis, logger)
		if err != nil {
			// Continue without rate limiting if Redis is not available
			logger.Warn("redis unavailable, analyze route is not rate limited", slog.String("error", err.Error()))
		} else {
			defer func() { _ = client.Close() }()
			svc.AnalyzeLimiter = middleware.NewAnalyzeRateLimiter(client, cfg.RateLimit.AnalyzeLimit, cfg.RateLimit.AnalyzeWindow, logger)
		}
	}

	srv := server.New(cfg, db, svc, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("received signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errChan
}
