package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealService handles meal persistence scoped to a user.
type MealService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMealService creates a new MealService instance
func NewMealService(db *gorm.DB) *MealService {
	return &MealService{db: db, now: time.Now}
}

// Create stores meal for userID. The owner always comes from userID; a zero
// date is replaced with the current time.
func (s *MealService) Create(ctx context.Context, userID string, meal *models.Meal) (*models.Meal, error) {
	if err := validateMeal(meal); err != nil {
		return nil, err
	}

	meal.ID = uuid.Nil
	meal.UserID = userID
	if meal.Date.IsZero() {
		meal.Date = s.now()
	}

	if err := s.db.WithContext(ctx).Create(meal).Error; err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}
	return meal, nil
}

func validateMeal(meal *models.Meal) error {
	meal.Description = strings.TrimSpace(meal.Description)
	if meal.Description == "" {
		return domain.NewValidationError("description", "Meal description is required.")
	}
	if !meal.Category.Valid() {
		return domain.NewValidationError("category", fmt.Sprintf("must be one of Breakfast, Lunch, Dinner, Snack; got %q", meal.Category))
	}
	return validateNutrition(meal.Items, meal.TotalCalories)
}

// validateNutrition checks the FoodItem invariants shared by saved meals and
// AI answers: every item is named and no value is negative.
func validateNutrition(items []models.FoodItem, totalCalories float64) error {
	if totalCalories < 0 {
		return domain.NewValidationError("totalCalories", "must not be negative")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Name) == "" {
			return domain.NewValidationError(field, "name is required")
		}
		if item.Calories < 0 || item.Protein < 0 || item.Carbs < 0 || item.Fat < 0 {
			return domain.NewValidationError(field, "nutrition values must not be negative")
		}
	}
	return nil
}

// ListForUser returns every meal owned by userID, newest first.
func (s *MealService) ListForUser(ctx context.Context, userID string) ([]models.Meal, error) {
	meals := []models.Meal{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return meals, nil
}

// DeleteByID permanently removes a meal owned by requestingUserID.
// The ownership check and the delete run in one transaction; a concurrent
// delete of the same meal surfaces as ErrNotFound.
func (s *MealService) DeleteByID(ctx context.Context, id uuid.UUID, requestingUserID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var meal models.Meal
		if err := tx.Select("id", "user_id").First(&meal, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("meal %s: %w", id, domain.ErrNotFound)
			}
			return fmt.Errorf("failed to load meal: %w", err)
		}

		if meal.UserID != requestingUserID {
			return fmt.Errorf("meal %s: %w", id, domain.ErrForbidden)
		}

		res := tx.Where("id = ? AND user_id = ?", id, requestingUserID).Delete(&models.Meal{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete meal: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("meal %s: %w", id, domain.ErrNotFound)
		}
		return nil
	})
}

// Search finds the user's meals whose description matches query. On
// PostgreSQL matches are ordered by embedding distance to the query.
func (s *MealService) Search(ctx context.Context, userID, query string) ([]models.Meal, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("q", "search query is required")
	}

	like := "%" + strings.ToLower(query) + "%"
	dbQuery := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("LOWER(description) LIKE ?", like)

	if s.db.Dialector.Name() == "postgres" {
		dbQuery = dbQuery.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{models.DescriptionEmbedding(query)}},
		})
	} else {
		dbQuery = dbQuery.Order("date DESC")
	}

	meals := []models.Meal{}
	if err := dbQuery.Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("failed to search meals: %w", err)
	}
	return meals, nil
}
