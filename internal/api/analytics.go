package api

import (
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cosmic-nutrition/backend/internal/analytics"
	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// AnalyticsHandler serves aggregates computed over the caller's meals.
type AnalyticsHandler struct {
	meals service.IMealService
	now   func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(meals service.IMealService) *AnalyticsHandler {
	return &AnalyticsHandler{meals: meals, now: time.Now}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/analytics")
	{
		stats.GET("/summary", h.GetSummary)
		stats.GET("/trends", h.GetTrends)
		stats.GET("/categories", h.GetCategories)
	}
}

// SummaryResponse is the body of GET /api/analytics/summary.
type SummaryResponse struct {
	Date        string           `json:"date"`
	Timezone    string           `json:"timezone"`
	Daily       analytics.Totals `json:"daily"`
	Weekly      analytics.Totals `json:"weekly"`
	WeeklyTotal analytics.Totals `json:"weeklyTotal"`
}

// TrendResponse is the body of GET /api/analytics/trends.
type TrendResponse struct {
	View     string             `json:"view"`
	Timezone string             `json:"timezone"`
	Buckets  []analytics.Bucket `json:"buckets"`
	Average  analytics.Macros   `json:"average"`
}

// CategoriesResponse is the body of GET /api/analytics/categories.
type CategoriesResponse struct {
	Categories map[models.Category][]models.Meal `json:"categories"`
}

// location reads ?tz=. An empty value means the server's local zone.
func location(c *gin.Context) (*time.Location, bool) {
	tz := c.Query("tz")
	if tz == "" {
		return time.Local, true
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: "Unknown time zone: " + tz})
		return nil, false
	}
	return loc, true
}

func (h *AnalyticsHandler) userMeals(c *gin.Context) ([]models.Meal, bool) {
	meals, err := h.meals.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err, "Server Error")
		return nil, false
	}
	return meals, true
}

// GetSummary returns the daily totals for ?date= (default today) and the
// seven-day average and total ending that day.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	loc, ok := location(c)
	if !ok {
		return
	}

	ref := h.now().In(loc)
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.MessageResponse{Message: "date must be formatted YYYY-MM-DD"})
			return
		}
		ref = day
	}

	meals, ok := h.userMeals(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		Date:        ref.Format("2006-01-02"),
		Timezone:    loc.String(),
		Daily:       analytics.DailyTotals(meals, ref),
		Weekly:      analytics.WeeklyAverage(meals, ref),
		WeeklyTotal: analytics.WeeklyTotal(meals, ref),
	})
}

// GetTrends returns the last seven days (?view=daily, the default) or the
// last four weeks (?view=weekly) with the per-bucket macro average.
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	loc, ok := location(c)
	if !ok {
		return
	}

	view := c.DefaultQuery("view", "daily")
	if view != "daily" && view != "weekly" {
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: "view must be daily or weekly"})
		return
	}

	meals, ok := h.userMeals(c)
	if !ok {
		return
	}

	now := h.now().In(loc)
	var buckets []analytics.Bucket
	if view == "weekly" {
		buckets = analytics.WeeklyTrend(meals, now, analytics.DefaultTrendWeeks)
	} else {
		buckets = analytics.DailyTrend(meals, now, analytics.DefaultTrendDays)
	}

	c.JSON(http.StatusOK, TrendResponse{
		View:     view,
		Timezone: loc.String(),
		Buckets:  buckets,
		Average:  analytics.TrendAverage(buckets),
	})
}

// GetCategories returns the caller's meals grouped by category.
func (h *AnalyticsHandler) GetCategories(c *gin.Context) {
	meals, ok := h.userMeals(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: analytics.GroupByCategory(meals)})
}
