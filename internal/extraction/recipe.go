package extraction

import (
	"strings"

	"github.com/localnerve/recipe-journal/internal/models"
)

// PlaceholderTitle is used when neither the model nor the page yields a title
const PlaceholderTitle = "unnamed recipe"

// Ingredient is one structured ingredient line
type Ingredient struct {
	Name   string   `json:"name"`
	Amount *float64 `json:"amount"`
	Unit   string   `json:"unit"`
}

// Step is one structured instruction
type Step struct {
	StepOrder    int    `json:"step_order"`
	Instruction  string `json:"instruction"`
	TimerSeconds int    `json:"timer_seconds"`
}

// Recipe is the extraction result, ready for a create-recipe call
type Recipe struct {
	Title        string       `json:"title"`
	Difficulty   string       `json:"difficulty"`
	Servings     int          `json:"servings"`
	SourceURL    string       `json:"source_url"`
	ThumbnailURL string       `json:"thumbnail_url"`
	Ingredients  []Ingredient `json:"ingredients"`
	Steps        []Step       `json:"steps"`
}

// Finalize overlays source and thumbnail, applies the title fallback chain
// and clamps model output into the accepted ranges
func (r *Recipe) Finalize(sourceURL, thumbnailURL, fallbackTitle string) {
	r.SourceURL = sourceURL
	r.ThumbnailURL = thumbnailURL

	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		r.Title = strings.TrimSpace(fallbackTitle)
	}
	if r.Title == "" {
		r.Title = PlaceholderTitle
	}

	r.Difficulty = strings.ToUpper(strings.TrimSpace(r.Difficulty))
	if !models.IsDifficulty(r.Difficulty) {
		r.Difficulty = models.DifficultyMedium
	}
	if r.Servings < 1 {
		r.Servings = 1
	}

	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	for i := range r.Ingredients {
		if a := r.Ingredients[i].Amount; a != nil && *a < 0 {
			r.Ingredients[i].Amount = nil
		}
	}

	if r.Steps == nil {
		r.Steps = []Step{}
	}
	renumber := false
	for i := range r.Steps {
		if r.Steps[i].TimerSeconds < 0 {
			r.Steps[i].TimerSeconds = 0
		}
		if r.Steps[i].StepOrder < 1 {
			renumber = true
		}
	}
	if renumber {
		for i := range r.Steps {
			r.Steps[i].StepOrder = i + 1
		}
	}
}
