package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
)

// Services bundles everything the HTTP handlers depend on.
type Services struct {
	Auth     middleware.TokenValidator
	Analysis service.IAnalysisService
	Meals    service.IMealService
	Users    service.IUserService
	Export   service.IExportService

	// AnalyzeLimiter is optional; without Redis the analyze route is not rate limited.
	AnalyzeLimiter *middleware.RateLimiter
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, svc Services, logger *slog.Logger) {
	// Health checks (no auth required)
	health := NewHealthHandler(db)
	router.GET("/", health.Root)
	router.GET("/health", health.Health)

	mealHandler := NewMealHandler(svc.Analysis, svc.Meals, svc.Export, logger)
	analyticsHandler := NewAnalyticsHandler(svc.Meals)
	userHandler := NewUserHandler(svc.Users, logger)

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(svc.Auth))

	mealHandler.RegisterRoutes(protected, svc.AnalyzeLimiter)
	analyticsHandler.RegisterRoutes(protected)
	userHandler.RegisterRoutes(protected)
}
