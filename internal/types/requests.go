package types

import (
	"time"

	"github.com/pageza/cosmic-nutrition/backend/internal/models"
)

// AnalyzeMealRequest is the body of POST /api/meals/analyze.
type AnalyzeMealRequest struct {
	Description string `json:"description"`
}

// AnalysisResult is the structured breakdown returned by the analysis gateway.
// It is merged into a Meal by the client before saving.
type AnalysisResult struct {
	Items         []models.FoodItem `json:"items"`
	TotalCalories float64           `json:"totalCalories"`
	Category      models.Category   `json:"category"`
	Feedback      string            `json:"feedback"`
}

// CreateMealRequest is the body of POST /api/meals. Owner and date are set by the server.
type CreateMealRequest struct {
	Description   string            `json:"description"`
	Items         []models.FoodItem `json:"items"`
	TotalCalories float64           `json:"totalCalories"`
	Category      models.Category   `json:"category"`
	Feedback      string            `json:"feedback"`
}

// SyncUserRequest is the body of POST /api/users/sync.
type SyncUserRequest struct {
	Auth0ID string `json:"auth0Id"`
	Email   string `json:"email"`
}

// SyncUserResponse reports the outcome of a user sync.
type SyncUserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user,omitempty"`
}

// MessageResponse is the generic error and status body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ExportResponse points at an uploaded meal history export.
type ExportResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expiresAt"`
}
