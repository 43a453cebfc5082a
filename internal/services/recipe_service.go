// recipe_service.go
//
// Recipe journal service with fridge tracking and URL recipe extraction
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipe-journal.
// recipe-journal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipe-journal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipe-journal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/recipe-journal/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// IngredientInput is one ingredient line of a recipe write
type IngredientInput struct {
	Name   string   `json:"name"`
	Amount *float64 `json:"amount"`
	Unit   string   `json:"unit"`
}

// StepInput is one step of a recipe write
type StepInput struct {
	StepOrder    int    `json:"step_order"`
	Instruction  string `json:"instruction"`
	TimerSeconds int    `json:"timer_seconds"`
	ImageURL     string `json:"image_url"`
}

// RecipeInput is a validated recipe create or replace payload
type RecipeInput struct {
	Title        string
	Servings     int
	Difficulty   string
	SourceURL    string
	ThumbnailURL string
	Ingredients  []IngredientInput
	Steps        []StepInput
}

// LogSummary is the compact form of a cooking log embedded in recipe views
type LogSummary struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	LessonNote string    `json:"lesson_note"`
	Companion  string    `json:"companion"`
	CookedAt   time.Time `json:"cooked_at"`
}

// RecipeStats aggregates a recipe's cooking outcomes
type RecipeStats struct {
	TotalLogs    int64 `json:"total_logs"`
	SuccessCount int64 `json:"success_count"`
	SuccessRate  *int  `json:"success_rate"`
}

// RecipeSummary is one row of the recipe list
type RecipeSummary struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Servings     int         `json:"servings"`
	Difficulty   string      `json:"difficulty"`
	SourceURL    string      `json:"source_url"`
	ThumbnailURL string      `json:"thumbnail_url"`
	CreatedAt    time.Time   `json:"created_at"`
	LatestLog    *LogSummary `json:"latest_log"`
	Stats        RecipeStats `json:"stats"`
}

// RecipeDetail is a recipe scaled to the requested servings
type RecipeDetail struct {
	ID           string                    `json:"id"`
	Title        string                    `json:"title"`
	BaseServings int                       `json:"base_servings"`
	Servings     int                       `json:"servings"`
	Difficulty   string                    `json:"difficulty"`
	SourceURL    string                    `json:"source_url"`
	ThumbnailURL string                    `json:"thumbnail_url"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Ingredients  []models.RecipeIngredient `json:"ingredients"`
	Steps        []models.RecipeStep       `json:"steps"`
	LatestLog    *LogSummary               `json:"latest_log"`
}

// RecipeSteps is the cooking-mode projection of a recipe
type RecipeSteps struct {
	ID    string              `json:"id"`
	Title string              `json:"title"`
	Steps []models.RecipeStep `json:"steps"`
}

func summarizeLog(l *models.CookingLog) *LogSummary {
	if l == nil {
		return nil
	}
	return &LogSummary{
		ID:         l.ID,
		Status:     l.Status,
		LessonNote: l.LessonNote,
		Companion:  l.Companion,
		CookedAt:   l.CookedAt,
	}
}

// buildChildren converts input lines into rows, numbering steps 1..n in the
// order given when any step lacks a positive order
func buildChildren(in RecipeInput) ([]models.RecipeIngredient, []models.RecipeStep) {
	ingredients := make([]models.RecipeIngredient, 0, len(in.Ingredients))
	for i, ing := range in.Ingredients {
		ingredients = append(ingredients, models.RecipeIngredient{
			Name:      ing.Name,
			Amount:    ing.Amount,
			Unit:      ing.Unit,
			SortOrder: i + 1,
		})
	}

	renumber := false
	for _, s := range in.Steps {
		if s.StepOrder < 1 {
			renumber = true
			break
		}
	}
	steps := make([]models.RecipeStep, 0, len(in.Steps))
	for i, s := range in.Steps {
		order := s.StepOrder
		if renumber {
			order = i + 1
		}
		steps = append(steps, models.RecipeStep{
			StepOrder:    order,
			Instruction:  s.Instruction,
			TimerSeconds: max(s.TimerSeconds, 0),
			ImageURL:     s.ImageURL,
		})
	}
	return ingredients, steps
}

func difficultyOrDefault(d string) string {
	if models.IsDifficulty(d) {
		return d
	}
	return models.DifficultyMedium
}

// CreateRecipe stores a recipe with its ingredients and steps atomically
func CreateRecipe(db *gorm.DB, userID string, in RecipeInput) (*models.Recipe, error) {
	ingredients, steps := buildChildren(in)
	recipe := models.Recipe{
		UserID:       userID,
		Title:        in.Title,
		Servings:     max(in.Servings, 1),
		Difficulty:   difficultyOrDefault(in.Difficulty),
		SourceURL:    in.SourceURL,
		ThumbnailURL: in.ThumbnailURL,
		Ingredients:  ingredients,
		Steps:        steps,
	}
	if err := db.Create(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// loadOwnedRecipe returns ErrNotFound when absent and ErrForbidden when owned by another user
func loadOwnedRecipe(db *gorm.DB, userID, recipeID string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkOwner(recipe.UserID, userID); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the user's recipes, newest first, with latest log and outcome stats
func ListRecipes(ctx context.Context, db *gorm.DB, userID string) ([]RecipeSummary, error) {
	db = db.WithContext(ctx)

	var recipes []models.Recipe
	var logs []models.CookingLog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).
			Clauses(hints.Comment("select", "recipe_list")).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Find(&recipes).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).
			Clauses(hints.Comment("select", "recipe_list_logs")).
			Where("user_id = ?", userID).
			Order("cooked_at DESC, created_at DESC").
			Find(&logs).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	latest := make(map[string]*models.CookingLog)
	stats := make(map[string]*RecipeStats)
	for i := range logs {
		l := &logs[i]
		if _, ok := latest[l.RecipeID]; !ok {
			latest[l.RecipeID] = l
		}
		s, ok := stats[l.RecipeID]
		if !ok {
			s = &RecipeStats{}
			stats[l.RecipeID] = s
		}
		s.TotalLogs++
		if l.Status == models.StatusSuccess {
			s.SuccessCount++
		}
	}

	result := make([]RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summary := RecipeSummary{
			ID:           r.ID,
			Title:        r.Title,
			Servings:     r.Servings,
			Difficulty:   r.Difficulty,
			SourceURL:    r.SourceURL,
			ThumbnailURL: r.ThumbnailURL,
			CreatedAt:    r.CreatedAt,
			LatestLog:    summarizeLog(latest[r.ID]),
		}
		if s, ok := stats[r.ID]; ok {
			summary.Stats = *s
		}
		summary.Stats.SuccessRate = successRate(summary.Stats.SuccessCount, summary.Stats.TotalLogs)
		result = append(result, summary)
	}
	return result, nil
}

// GetRecipe returns the recipe scaled to servings (0 means base servings)
func GetRecipe(ctx context.Context, db *gorm.DB, userID, recipeID string, servings int) (*RecipeDetail, error) {
	db = db.WithContext(ctx)

	recipe, err := loadOwnedRecipe(db, userID, recipeID)
	if err != nil {
		return nil, err
	}

	var ingredients []models.RecipeIngredient
	var steps []models.RecipeStep
	var latest []models.CookingLog

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.WithContext(gctx).Where("recipe_id = ?", recipe.ID).Order("sort_order ASC").Find(&ingredients).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).Where("recipe_id = ?", recipe.ID).Order("step_order ASC").Find(&steps).Error
	})
	g.Go(func() error {
		return db.WithContext(gctx).
			Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).
			Order("cooked_at DESC, created_at DESC").
			Limit(1).
			Find(&latest).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if servings <= 0 {
		servings = recipe.Servings
	}
	for i := range ingredients {
		ingredients[i].Amount = ScaleAmount(ingredients[i].Amount, recipe.Servings, servings)
	}

	detail := &RecipeDetail{
		ID:           recipe.ID,
		Title:        recipe.Title,
		BaseServings: recipe.Servings,
		Servings:     servings,
		Difficulty:   recipe.Difficulty,
		SourceURL:    recipe.SourceURL,
		ThumbnailURL: recipe.ThumbnailURL,
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
		Ingredients:  ingredients,
		Steps:        steps,
	}
	if len(latest) > 0 {
		detail.LatestLog = summarizeLog(&latest[0])
	}
	return detail, nil
}

// UpdateRecipe replaces the recipe's fields and children
func UpdateRecipe(db *gorm.DB, userID, recipeID string, in RecipeInput) error {
	return db.Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, userID, recipeID)
		if err != nil {
			return err
		}

		err = tx.Model(recipe).Updates(map[string]interface{}{
			"title":         in.Title,
			"servings":      max(in.Servings, 1),
			"difficulty":    difficultyOrDefault(in.Difficulty),
			"source_url":    in.SourceURL,
			"thumbnail_url": in.ThumbnailURL,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeStep{}).Error; err != nil {
			return err
		}

		ingredients, steps := buildChildren(in)
		for i := range ingredients {
			ingredients[i].RecipeID = recipe.ID
		}
		for i := range steps {
			steps[i].RecipeID = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}
		if len(steps) > 0 {
			if err := tx.Create(&steps).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteRecipe removes the recipe, its children and its cooking logs
func DeleteRecipe(db *gorm.DB, userID, recipeID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		recipe, err := loadOwnedRecipe(tx, userID, recipeID)
		if err != nil {
			return err
		}
		for _, model := range []interface{}{&models.CookingLog{}, &models.RecipeIngredient{}, &models.RecipeStep{}} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(recipe).Error
	})
}

// GetRecipeSteps returns the ordered steps for cooking mode
func GetRecipeSteps(ctx context.Context, db *gorm.DB, userID, recipeID string) (*RecipeSteps, error) {
	db = db.WithContext(ctx)
	recipe, err := loadOwnedRecipe(db, userID, recipeID)
	if err != nil {
		return nil, err
	}
	var steps []models.RecipeStep
	if err := db.Where("recipe_id = ?", recipe.ID).Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return &RecipeSteps{ID: recipe.ID, Title: recipe.Title, Steps: steps}, nil
}

// GetRecipeLogs returns the caller's logs for one recipe, newest first
func GetRecipeLogs(ctx context.Context, db *gorm.DB, userID, recipeID string) ([]LogSummary, error) {
	db = db.WithContext(ctx)
	recipe, err := loadOwnedRecipe(db, userID, recipeID)
	if err != nil {
		return nil, err
	}
	var logs []models.CookingLog
	err = db.Where("recipe_id = ? AND user_id = ?", recipe.ID, userID).
		Order("cooked_at DESC, created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	result := make([]LogSummary, 0, len(logs))
	for i := range logs {
		result = append(result, *summarizeLog(&logs[i]))
	}
	return result, nil
}
