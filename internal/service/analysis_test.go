package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/mocks"
	"github.com/pageza/cosmic-nutrition/backend/internal/models"
	"github.com/pageza/cosmic-nutrition/backend/internal/testdb"
)

const oatmealAnswer = `{
  "items": [
    {"name": "oatmeal", "calories": 150, "protein": 5, "carbs": 27, "fat": 3},
    {"name": "banana", "calories": 105, "protein": 1.3, "carbs": 27}
  ],
  "totalCalories": 255,
  "category": "Breakfast"
}`

func TestAnalyze(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, `"oatmeal with a banana"`) && strings.Contains(p, "expert nutritionist")
	}), nutritionSchema).Return(oatmealAnswer, nil)
	gen.On("GenerateText", mock.Anything, mock.AnythingOfType("string")).Return("  A hearty, fiber-rich start to your day!\n", nil)

	svc := NewAnalysisService(gen, testdb.Logger())
	result, err := svc.Analyze(context.Background(), "  oatmeal with a banana ")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "oatmeal", result.Items[0].Name)
	assert.Equal(t, 0.0, result.Items[1].Fat)
	assert.Equal(t, 255.0, result.TotalCalories)
	assert.Equal(t, models.Breakfast, result.Category)
	assert.Equal(t, "A hearty, fiber-rich start to your day!", result.Feedback)
	gen.AssertExpectations(t)
}

func TestAnalyzeFeedbackFailureIsNotFatal(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(oatmealAnswer, nil)
	gen.On("GenerateText", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	result, err := NewAnalysisService(gen, testdb.Logger()).Analyze(context.Background(), "oatmeal")
	require.NoError(t, err)
	assert.Empty(t, result.Feedback)
	assert.Equal(t, 255.0, result.TotalCalories)
}

func TestAnalyzeRejectsEmptyDescription(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	svc := NewAnalysisService(gen, testdb.Logger())

	for _, desc := range []string{"", "   ", "\n\t"} {
		_, err := svc.Analyze(context.Background(), desc)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Meal description is required.", verr.Message)
	}
	gen.AssertNotCalled(t, "GenerateJSON", mock.Anything, mock.Anything, mock.Anything)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}

func TestAnalyzeUnconfigured(t *testing.T) {
	svc := NewAnalysisService(nil, testdb.Logger())
	assert.False(t, svc.Configured())

	_, err := svc.Analyze(context.Background(), "toast")
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestAnalyzeUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		err     error
		wantErr error
	}{
		{name: "transport failure", err: domain.ErrUpstream, wantErr: domain.ErrUpstream},
		{name: "rejected key", err: domain.ErrAuthentication, wantErr: domain.ErrAuthentication},
		{name: "not json", answer: "I think this is about 400 calories", wantErr: domain.ErrUpstreamFormat},
		{name: "unknown category", answer: `{"items":[],"totalCalories":10,"category":"Brunch"}`, wantErr: domain.ErrUpstreamFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mocks.MockTextGenerator)
			gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).Return(tt.answer, tt.err)

			_, err := NewAnalysisService(gen, testdb.Logger()).Analyze(context.Background(), "mystery stew")
			assert.ErrorIs(t, err, tt.wantErr)
			gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
		})
	}
}

func TestParseNutritionAnswer(t *testing.T) {
	answer, err := parseNutritionAnswer("```json\n{\"totalCalories\": 90, \"category\": \"Snack\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, models.Snack, answer.Category)
	assert.NotNil(t, answer.Items)
	assert.Empty(t, answer.Items)
}

func TestParseNutritionAnswerRejectsInvalidItems(t *testing.T) {
	tests := map[string]string{
		"negative item":  `{"items":[{"name":"chips","calories":-120,"protein":-4}],"totalCalories":120,"category":"Snack"}`,
		"negative total": `{"items":[{"name":"chips","calories":120}],"totalCalories":-120,"category":"Snack"}`,
		"unnamed item":   `{"items":[{"name":"  ","calories":120}],"totalCalories":120,"category":"Snack"}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseNutritionAnswer(raw)
			assert.ErrorIs(t, err, domain.ErrUpstreamFormat)
			assert.NotErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAnalyzeRejectsNegativeNutrition(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("GenerateJSON", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"items":[{"name":"","calories":-120,"protein":-4}],"totalCalories":-120,"category":"Snack"}`, nil)

	result, err := NewAnalysisService(gen, testdb.Logger()).Analyze(context.Background(), "mystery snack")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUpstreamFormat)
	gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
}
