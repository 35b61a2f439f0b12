package models

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is the meal slot a meal was eaten in.
type Category string

const (
	Breakfast Category = "Breakfast"
	Lunch     Category = "Lunch"
	Dinner    Category = "Dinner"
	Snack     Category = "Snack"
)

// Categories lists every valid category in display order.
var Categories = []Category{Breakfast, Lunch, Dinner, Snack}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	}
	return false
}

// FoodItem is one component of a meal with its estimated nutrition.
type FoodItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Meal is a logged eating event owned by a single user.
// TotalCalories is stored as supplied and is not derived from Items.
type Meal struct {
	ID            uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string                        `gorm:"column:user_id;size:255;not null;index" json:"user"`
	Description   string                        `gorm:"type:text;not null" json:"description"`
	Items         datatypes.JSONSlice[FoodItem] `gorm:"not null" json:"items"`
	TotalCalories float64                       `gorm:"not null;default:0" json:"totalCalories"`
	Category      Category                      `gorm:"size:16;not null" json:"category"`
	Feedback      string                        `gorm:"type:text" json:"feedback,omitempty"`
	Date          time.Time                     `gorm:"not null;index" json:"date"`
	Embedding     pgvector.Vector               `gorm:"type:vector(3)" json:"-"`
	CreatedAt     time.Time                     `json:"createdAt"`
	UpdatedAt     time.Time                     `json:"updatedAt"`
}

// BeforeCreate assigns the primary key and normalizes stored values.
func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Items == nil {
		m.Items = datatypes.JSONSlice[FoodItem]{}
	}
	m.Date = m.Date.UTC()
	m.Embedding = DescriptionEmbedding(m.Description)
	return nil
}

// AfterFind keeps Items a non-nil slice so it always encodes as an array.
func (m *Meal) AfterFind(tx *gorm.DB) error {
	if m.Items == nil {
		m.Items = datatypes.JSONSlice[FoodItem]{}
	}
	return nil
}
