package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
)

func seedMeal(t *testing.T, env *testEnv, userID string, at time.Time, calories float64, category models.Category, items ...models.FoodItem) {
	t.Helper()
	_, err := env.meals.Create(context.Background(), userID, &models.Meal{
		Description:   string(category) + " meal",
		Items:         items,
		TotalCalories: calories,
		Category:      category,
		Date:          at,
	})
	require.NoError(t, err)
}

func TestAnalyticsSummary(t *testing.T) {
	env := setupTestRouter(t)
	alice := tokenFor(t, "auth0|alice")

	// 2024-05-15 and 2024-05-13 in UTC, plus one meal for another user.
	seedMeal(t, env, "auth0|alice", time.Date(2024, time.May, 15, 8, 0, 0, 0, time.UTC), 500, models.Breakfast,
		models.FoodItem{Name: "eggs", Calories: 300, Protein: 30},
		models.FoodItem{Name: "toast", Calories: 200, Protein: 5},
	)
	seedMeal(t, env, "auth0|alice", time.Date(2024, time.May, 13, 12, 0, 0, 0, time.UTC), 700, models.Lunch,
		models.FoodItem{Name: "pasta", Calories: 700, Carbs: 90})
	seedMeal(t, env, "auth0|bob", time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC), 9999, models.Breakfast)

	w := env.do(t, http.MethodGet, "/api/analytics/summary?date=2024-05-15&tz=UTC", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got SummaryResponse
	decode(t, w, &got)
	assert.Equal(t, "2024-05-15", got.Date)
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, 500.0, got.Daily.Calories)
	assert.Equal(t, 35.0, got.Daily.Protein)
	assert.Equal(t, 600.0, got.Weekly.Calories)
	assert.Equal(t, 45.0, got.Weekly.Carbs)
	assert.Equal(t, 1200.0, got.WeeklyTotal.Calories)
}

func TestAnalyticsSummaryTimeZone(t *testing.T) {
	env := setupTestRouter(t)
	alice := tokenFor(t, "auth0|alice")

	// 03:00 UTC on the 15th is still the 14th in New York.
	seedMeal(t, env, "auth0|alice", time.Date(2024, time.May, 15, 3, 0, 0, 0, time.UTC), 400, models.Dinner)

	var got SummaryResponse
	w := env.do(t, http.MethodGet, "/api/analytics/summary?date=2024-05-14&tz=America/New_York", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &got)
	assert.Equal(t, 400.0, got.Daily.Calories)

	w = env.do(t, http.MethodGet, "/api/analytics/summary?date=2024-05-15&tz=UTC", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, 400.0, got.Daily.Calories)
}

func TestAnalyticsBadParameters(t *testing.T) {
	env := setupTestRouter(t)
	alice := tokenFor(t, "auth0|alice")

	for _, path := range []string{
		"/api/analytics/summary?tz=Mars/Olympus_Mons",
		"/api/analytics/summary?date=15-05-2024",
		"/api/analytics/trends?view=monthly",
		"/api/analytics/trends?tz=Nowhere",
	} {
		w := env.do(t, http.MethodGet, path, alice, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestAnalyticsTrends(t *testing.T) {
	env := setupTestRouter(t)
	alice := tokenFor(t, "auth0|alice")
	seedMeal(t, env, "auth0|alice", time.Now(), 600, models.Lunch, models.FoodItem{Name: "bowl", Calories: 600, Protein: 30})

	var daily TrendResponse
	w := env.do(t, http.MethodGet, "/api/analytics/trends?tz=UTC", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &daily)
	assert.Equal(t, "daily", daily.View)
	require.Len(t, daily.Buckets, 7)
	assert.Equal(t, 600.0, daily.Buckets[6].Calories)
	assert.Equal(t, 30.0, daily.Average.Protein)

	var weekly TrendResponse
	w = env.do(t, http.MethodGet, "/api/analytics/trends?view=weekly&tz=UTC", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &weekly)
	assert.Equal(t, "weekly", weekly.View)
	require.Len(t, weekly.Buckets, 4)
	assert.Equal(t, 600.0, weekly.Buckets[3].Calories)
}

func TestAnalyticsTrendsWithFixedClock(t *testing.T) {
	env := setupTestRouter(t)
	seedMeal(t, env, "auth0|alice", time.Date(2024, time.May, 9, 19, 0, 0, 0, time.UTC), 900, models.Dinner)

	h := NewAnalyticsHandler(env.meals)
	h.now = func() time.Time { return time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC) }

	router := env.router
	group := router.Group("/fixed")
	group.Use(func(c *gin.Context) { c.Set(middleware.UserIDKey, "auth0|alice"); c.Next() })
	h.RegisterRoutes(group)

	var got TrendResponse
	w := env.do(t, http.MethodGet, "/fixed/analytics/trends?tz=UTC", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	require.Len(t, got.Buckets, 7)
	assert.Equal(t, "2024-05-09", got.Buckets[0].Key)
	assert.Equal(t, 900.0, got.Buckets[0].Calories)
	assert.Equal(t, "2024-05-15", got.Buckets[6].Key)
}

func TestAnalyticsCategories(t *testing.T) {
	env := setupTestRouter(t)
	alice := tokenFor(t, "auth0|alice")
	seedMeal(t, env, "auth0|alice", time.Now(), 300, models.Snack)
	seedMeal(t, env, "auth0|alice", time.Now(), 500, models.Snack)
	seedMeal(t, env, "auth0|alice", time.Now(), 700, models.Dinner)

	w := env.do(t, http.MethodGet, "/api/analytics/categories", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got CategoriesResponse
	decode(t, w, &got)
	require.Len(t, got.Categories, 4)
	assert.Len(t, got.Categories[models.Snack], 2)
	assert.Len(t, got.Categories[models.Dinner], 1)
	assert.Empty(t, got.Categories[models.Breakfast])
}
