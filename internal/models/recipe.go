package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty levels for a recipe
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Difficulties lists the accepted difficulty values in ascending order
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// IsDifficulty reports whether s is one of the accepted difficulty values
func IsDifficulty(s string) bool {
	for _, d := range Difficulties {
		if s == d {
			return true
		}
	}
	return false
}

// Recipe is a user's stored recipe with its ordered ingredients and steps
type Recipe struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Servings     int       `gorm:"not null" json:"servings"`
	Difficulty   string    `gorm:"size:16;not null" json:"difficulty"`
	SourceURL    string    `gorm:"size:2048" json:"source_url"`
	ThumbnailURL string    `gorm:"size:2048" json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients,omitempty"`
	Steps       []RecipeStep       `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"steps,omitempty"`
}

// RecipeIngredient is one ingredient line; Amount is nil when not numeric
type RecipeIngredient struct {
	ID        string   `gorm:"type:varchar(36);primaryKey" json:"id"`
	RecipeID  string   `gorm:"type:varchar(36);not null;index" json:"-"`
	Name      string   `gorm:"size:255;not null" json:"name"`
	Amount    *float64 `json:"amount"`
	Unit      string   `gorm:"size:32" json:"unit"`
	SortOrder int      `gorm:"not null" json:"sort_order"`
}

// RecipeStep is one instruction; TimerSeconds of 0 means no timer
type RecipeStep struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	RecipeID     string `gorm:"type:varchar(36);not null;index" json:"-"`
	StepOrder    int    `gorm:"not null" json:"step_order"`
	Instruction  string `gorm:"type:text;not null" json:"instruction"`
	TimerSeconds int    `gorm:"not null" json:"timer_seconds"`
	ImageURL     string `gorm:"size:2048" json:"image_url"`
}

// BeforeCreate assigns a uuid when none is set
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid when none is set
func (i *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid when none is set
func (s *RecipeStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Recipe
func (Recipe) TableName() string {
	return "recipes"
}

// TableName overrides the table name for RecipeIngredient
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

// TableName overrides the table name for RecipeStep
func (RecipeStep) TableName() string {
	return "recipe_steps"
}
