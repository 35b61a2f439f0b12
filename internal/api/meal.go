package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// MealHandler serves meal analysis, storage, search and export.
type MealHandler struct {
	analysis service.IAnalysisService
	meals    service.IMealService
	export   service.IExportService
	logger   *slog.Logger
}

// NewMealHandler creates a new MealHandler
func NewMealHandler(analysis service.IAnalysisService, meals service.IMealService, export service.IExportService, logger *slog.Logger) *MealHandler {
	return &MealHandler{
		analysis: analysis,
		meals:    meals,
		export:   export,
		logger:   logger,
	}
}

// RegisterRoutes registers the meal routes. limiter may be nil.
func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup, limiter *middleware.RateLimiter) {
	meals := router.Group("/meals")
	{
		if limiter != nil {
			meals.POST("/analyze", limiter.RateLimitMiddleware(), h.AnalyzeMeal)
		} else {
			meals.POST("/analyze", h.AnalyzeMeal)
		}
		meals.GET("", h.ListMeals)
		meals.POST("", h.CreateMeal)
		meals.GET("/search", h.SearchMeals)
		meals.GET("/export", h.ExportMeals)
		meals.DELETE("/:id", h.DeleteMeal)
	}
}

// AnalyzeMeal asks the AI service for a nutrition breakdown of a description.
func (h *MealHandler) AnalyzeMeal(c *gin.Context) {
	// An unreadable body is analyzed as an empty description so an
	// unconfigured service still answers 503 before the 400.
	var req types.AnalyzeMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = types.AnalyzeMealRequest{}
	}

	result, err := h.analysis.Analyze(c.Request.Context(), req.Description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			respondError(c, err, "Meal description is required.")
		case errors.Is(err, domain.ErrServiceUnavailable):
			respondError(c, err, "AI service is not configured on the server. API_KEY is missing.")
		case errors.Is(err, domain.ErrAuthentication):
			h.logger.ErrorContext(c.Request.Context(), "AI service rejected the configured API key", slog.String("error", err.Error()))
			respondError(c, err, "The configured API key is invalid. Please check the server configuration.")
		default:
			h.logger.ErrorContext(c.Request.Context(), "meal analysis failed", slog.String("error", err.Error()))
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, types.MessageResponse{Message: "Error analyzing meal with AI."})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMeals returns the caller's meals, newest first.
func (h *MealHandler) ListMeals(c *gin.Context) {
	meals, err := h.meals.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, meals)
}

// CreateMeal stores a meal for the caller. Owner and date are set server side.
func (h *MealHandler) CreateMeal(c *gin.Context) {
	var req types.CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: "Invalid request body"})
		return
	}

	meal := &models.Meal{
		Description:   req.Description,
		Items:         req.Items,
		TotalCalories: req.TotalCalories,
		Category:      req.Category,
		Feedback:      req.Feedback,
	}

	created, err := h.meals.Create(c.Request.Context(), middleware.UserID(c), meal)
	if err != nil {
		respondError(c, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, created)
}

// DeleteMeal removes one of the caller's meals. Responses use the {"msg": ...}
// shape the web client reads.
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "Meal not found"})
		return
	}

	err = h.meals.DeleteByID(c.Request.Context(), id, middleware.UserID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"msg": "Meal removed"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Meal not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "User not authorized"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server Error"})
	}
}

// SearchMeals finds the caller's meals whose description matches ?q=.
func (h *MealHandler) SearchMeals(c *gin.Context) {
	meals, err := h.meals.Search(c.Request.Context(), middleware.UserID(c), c.Query("q"))
	if err != nil {
		respondError(c, err, "Failed to search meals")
		return
	}
	c.JSON(http.StatusOK, meals)
}

// ExportMeals uploads the caller's meal history and returns a download link.
func (h *MealHandler) ExportMeals(c *gin.Context) {
	resp, err := h.export.Export(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, domain.ErrServiceUnavailable) {
			respondError(c, err, "Meal export storage is not configured on the server.")
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "meal export failed", slog.String("error", err.Error()))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, types.MessageResponse{Message: "Failed to export meals"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
