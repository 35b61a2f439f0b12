package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// ExportService uploads a user's meal history as JSON and returns a download link.
type ExportService struct {
	meals IMealService
	store ObjectStore
	ttl   time.Duration
	now   func() time.Time
}

// NewExportService creates an ExportService. A nil store disables exports.
func NewExportService(meals IMealService, store ObjectStore, ttl time.Duration) *ExportService {
	return &ExportService{meals: meals, store: store, ttl: ttl, now: time.Now}
}

type mealExport struct {
	UserID     string        `json:"user"`
	ExportedAt time.Time     `json:"exportedAt"`
	Meals      []models.Meal `json:"meals"`
}

// Export writes every meal owned by userID to the object store.
func (s *ExportService) Export(ctx context.Context, userID string) (*types.ExportResponse, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: export storage is not configured", domain.ErrServiceUnavailable)
	}

	meals, err := s.meals.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(mealExport{UserID: userID, ExportedAt: now, Meals: meals}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("meal-exports/%s/%s-%s.json", uuid.NewSHA1(uuid.NameSpaceURL, []byte(userID)), now.Format("20060102T150405Z"), uuid.NewString()[:8])
	if err := s.store.PutObject(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	url, err := s.store.GeneratePresignedURL(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to presign export: %v", domain.ErrUpstream, err)
	}

	return &types.ExportResponse{
		URL:       url,
		Key:       key,
		Count:     len(meals),
		ExpiresAt: now.Add(s.ttl),
	}, nil
}
