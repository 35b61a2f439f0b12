package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// nutritionSchema constrains the model's answer to the AnalysisResult shape.
var nutritionSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"items": map[string]any{
			"type":        "ARRAY",
			"description": "List of food items in the meal.",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"name":     map[string]any{"type": "STRING", "description": "Name of the food item."},
					"calories": map[string]any{"type": "NUMBER", "description": "Estimated calories for the item."},
					"protein":  map[string]any{"type": "NUMBER", "description": "Estimated protein in grams."},
					"carbs":    map[string]any{"type": "NUMBER", "description": "Estimated carbohydrates in grams."},
					"fat":      map[string]any{"type": "NUMBER", "description": "Estimated fat in grams."},
				},
				"required": []string{"name", "calories"},
			},
		},
		"totalCalories": map[string]any{
			"type":        "NUMBER",
			"description": "Sum of calories for all items in the meal.",
		},
		"category": map[string]any{
			"type":        "STRING",
			"description": "Categorize the meal. If the user doesn't specify, infer from the food items or time of day. For example, coffee and croissant is likely 'Breakfast'.",
			"enum":        []string{"Breakfast", "Lunch", "Dinner", "Snack"},
		},
	},
	"required": []string{"items", "totalCalories", "category"},
}

const nutritionPrompt = "As an expert nutritionist API, analyze the following meal description. " +
	"Break it down into individual food items and provide your best estimate for the nutritional " +
	"information (calories, protein, carbs, fat) for each. Calculate the total calories for the entire meal. " +
	"Finally, categorize the meal as 'Breakfast', 'Lunch', 'Dinner', or 'Snack' based on the ingredients. " +
	"Here is the meal: %q"

const feedbackPrompt = "Act as a friendly, encouraging nutritionist. Based on this meal description: %q, " +
	"and its nutritional content: %s, provide a single, short, positive, and helpful review. " +
	"Keep it to one sentence. For example: 'A great source of protein to start your day!' or 'A balanced and colorful lunch.'"

// AnalysisService turns a free-text meal description into a nutrition breakdown.
type AnalysisService struct {
	generator TextGenerator
	logger    *slog.Logger
}

// NewAnalysisService creates an AnalysisService. A nil generator means the AI
// integration is not configured and every call fails with ErrServiceUnavailable.
func NewAnalysisService(generator TextGenerator, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{generator: generator, logger: logger}
}

// Configured reports whether a text generator is available.
func (s *AnalysisService) Configured() bool {
	return s.generator != nil
}

type nutritionAnswer struct {
	Items         []models.FoodItem `json:"items"`
	TotalCalories float64           `json:"totalCalories"`
	Category      models.Category   `json:"category"`
}

// Analyze estimates items, total calories and category for description, then
// asks for a one-sentence review. A failed review leaves Feedback empty.
func (s *AnalysisService) Analyze(ctx context.Context, description string) (*types.AnalysisResult, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("%w: AI service is not configured", domain.ErrServiceUnavailable)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, domain.NewValidationError("description", "Meal description is required.")
	}

	raw, err := s.generator.GenerateJSON(ctx, fmt.Sprintf(nutritionPrompt, description), nutritionSchema)
	if err != nil {
		return nil, fmt.Errorf("nutrition analysis: %w", err)
	}

	answer, err := parseNutritionAnswer(raw)
	if err != nil {
		return nil, err
	}

	result := &types.AnalysisResult{
		Items:         answer.Items,
		TotalCalories: answer.TotalCalories,
		Category:      answer.Category,
	}

	itemsJSON, err := json.Marshal(answer.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	feedback, err := s.generator.GenerateText(ctx, fmt.Sprintf(feedbackPrompt, description, itemsJSON))
	if err != nil {
		s.logger.WarnContext(ctx, "meal feedback generation failed", slog.String("error", err.Error()))
	} else {
		result.Feedback = strings.TrimSpace(feedback)
	}

	return result, nil
}

func parseNutritionAnswer(raw string) (*nutritionAnswer, error) {
	raw = stripCodeFence(raw)

	var answer nutritionAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return nil, fmt.Errorf("%w: nutrition response is not valid JSON: %v", domain.ErrUpstreamFormat, err)
	}
	if !answer.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown meal category %q", domain.ErrUpstreamFormat, answer.Category)
	}
	if err := validateNutrition(answer.Items, answer.TotalCalories); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFormat, err)
	}
	if answer.Items == nil {
		answer.Items = []models.FoodItem{}
	}
	return &answer, nil
}

// stripCodeFence removes a ```json fence some model versions add despite the JSON mime type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
