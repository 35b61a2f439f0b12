package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockMealService is a mock implementation of service.IMealService
type MockMealService struct {
	mock.Mock
}

// Create mocks the Create method
func (m *MockMealService) Create(ctx context.Context, userID string, meal *models.Meal) (*models.Meal, error) {
	args := m.Called(ctx, userID, meal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Meal), args.Error(1)
}

// ListForUser mocks the ListForUser method
func (m *MockMealService) ListForUser(ctx context.Context, userID string) ([]models.Meal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meal), args.Error(1)
}

// DeleteByID mocks the DeleteByID method
func (m *MockMealService) DeleteByID(ctx context.Context, id uuid.UUID, requestingUserID string) error {
	args := m.Called(ctx, id, requestingUserID)
	return args.Error(0)
}

// Search mocks the Search method
func (m *MockMealService) Search(ctx context.Context, userID, query string) ([]models.Meal, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Meal), args.Error(1)
}

// MockAnalysisService is a mock implementation of service.IAnalysisService
type MockAnalysisService struct {
	mock.Mock
}

// Analyze mocks the Analyze method
func (m *MockAnalysisService) Analyze(ctx context.Context, description string) (*types.AnalysisResult, error) {
	args := m.Called(ctx, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalysisResult), args.Error(1)
}

// MockExportService is a mock implementation of service.IExportService
type MockExportService struct {
	mock.Mock
}

// Export mocks the Export method
func (m *MockExportService) Export(ctx context.Context, userID string) (*types.ExportResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}
