package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// TextGenerator is the generative model behind meal analysis.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (string, error)
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ObjectStore stores export files and hands out temporary download links.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// IAnalysisService defines the interface for meal analysis
type IAnalysisService interface {
	Analyze(ctx context.Context, description string) (*types.AnalysisResult, error)
}

// IMealService defines the interface for meal persistence
type IMealService interface {
	Create(ctx context.Context, userID string, meal *models.Meal) (*models.Meal, error)
	ListForUser(ctx context.Context, userID string) ([]models.Meal, error)
	DeleteByID(ctx context.Context, id uuid.UUID, requestingUserID string) error
	Search(ctx context.Context, userID, query string) ([]models.Meal, error)
}

// IUserService defines the interface for identity sync
type IUserService interface {
	Sync(ctx context.Context, tokenSubject string, req *types.SyncUserRequest) (*SyncResult, error)
}

// IExportService defines the interface for meal history exports
type IExportService interface {
	Export(ctx context.Context, userID string) (*types.ExportResponse, error)
}
