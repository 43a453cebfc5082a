// recipes.go
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

package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/types"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// RecipeHandler handles recipe routes
type RecipeHandler struct {
	DB *gorm.DB
}

type ingredientRequest struct {
	Name   string                    `json:"name" validate:"required,max=200"`
	Amount types.FlexNumber[float64] `json:"amount" swaggertype:"number"`
	Unit   string                    `json:"unit" validate:"max=50"`
}

type stepRequest struct {
	StepOrder    types.FlexNumber[int] `json:"step_order" swaggertype:"integer"`
	Instruction  string                `json:"instruction" validate:"required"`
	TimerSeconds types.FlexNumber[int] `json:"timer_seconds" swaggertype:"integer"`
	ImageURL     string                `json:"image_url" validate:"max=2048"`
}

// RecipeRequest is the create and replace payload for a recipe.
// ingredients and steps accept a single object or an array.
type RecipeRequest struct {
	Title        string                            `json:"title" validate:"required,max=200"`
	Servings     types.FlexNumber[int]             `json:"servings" swaggertype:"integer"`
	Difficulty   string                            `json:"difficulty" validate:"omitempty,oneof=EASY MEDIUM HARD"`
	SourceURL    string                            `json:"source_url" validate:"max=2048"`
	ThumbnailURL string                            `json:"thumbnail_url" validate:"max=2048"`
	Ingredients  types.FlexList[ingredientRequest] `json:"ingredients" validate:"required,dive"`
	Steps        types.FlexList[stepRequest]       `json:"steps" validate:"required,dive"`
}

func (r *RecipeRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Difficulty = strings.ToUpper(strings.TrimSpace(r.Difficulty))
	for i := range r.Ingredients {
		r.Ingredients[i].Name = strings.TrimSpace(r.Ingredients[i].Name)
		r.Ingredients[i].Unit = strings.TrimSpace(r.Ingredients[i].Unit)
	}
	for i := range r.Steps {
		r.Steps[i].Instruction = strings.TrimSpace(r.Steps[i].Instruction)
	}
}

// rangeErrors covers the numeric fields the validator cannot see through FlexNumber
func (r *RecipeRequest) rangeErrors() []string {
	var errs []string
	if r.Servings.Valid && r.Servings.Value < 1 {
		errs = append(errs, "servings must be at least 1")
	}
	for i, ing := range r.Ingredients {
		if ing.Amount.Valid && ing.Amount.Value < 0 {
			errs = append(errs, fmt.Sprintf("ingredients[%d].amount must not be negative", i))
		}
	}
	for i, s := range r.Steps {
		if s.TimerSeconds.Valid && s.TimerSeconds.Value < 0 {
			errs = append(errs, fmt.Sprintf("steps[%d].timer_seconds must not be negative", i))
		}
	}
	return errs
}

func (r *RecipeRequest) input() services.RecipeInput {
	in := services.RecipeInput{
		Title:        r.Title,
		Servings:     r.Servings.Or(1),
		Difficulty:   r.Difficulty,
		SourceURL:    strings.TrimSpace(r.SourceURL),
		ThumbnailURL: strings.TrimSpace(r.ThumbnailURL),
		Ingredients:  make([]services.IngredientInput, 0, len(r.Ingredients)),
		Steps:        make([]services.StepInput, 0, len(r.Steps)),
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, services.IngredientInput{
			Name:   ing.Name,
			Amount: ing.Amount.Ptr(),
			Unit:   ing.Unit,
		})
	}
	for _, s := range r.Steps {
		in.Steps = append(in.Steps, services.StepInput{
			StepOrder:    s.StepOrder.Or(0),
			Instruction:  s.Instruction,
			TimerSeconds: s.TimerSeconds.Or(0),
			ImageURL:     s.ImageURL,
		})
	}
	return in
}

func parseRecipe(c *fiber.Ctx) (*RecipeRequest, error) {
	var req RecipeRequest
	if err := parseBody(c, &req); err != nil {
		return nil, err
	}
	req.normalize()
	if err := check(&req, req.rangeErrors()...); err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRecipes handles GET /api/recipes
// @Summary List recipes
// @Description The caller's recipes, newest first, with the latest cooking log and outcome stats
// @Tags Recipes
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.RecipeSummary}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes [get]
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	recipes, err := services.ListRecipes(c.UserContext(), h.DB, user.ID)
	if err != nil {
		return serviceError(err, "Recipe", "Failed to load recipes")
	}
	return utils.SuccessResponse(c, recipes, fiber.StatusOK)
}

// CreateRecipe handles POST /api/recipes
// @Summary Create a recipe
// @Description Stores a recipe with its ingredients and steps
// @Tags Recipes
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body RecipeRequest true "Recipe"
// @Success 201 {object} utils.SuccessResponseStruct{data=utils.CreatedRecipeStruct}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes [post]
func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := parseRecipe(c)
	if err != nil {
		return err
	}

	recipe, err := services.CreateRecipe(h.DB.WithContext(c.UserContext()), user.ID, req.input())
	if err != nil {
		return serviceError(err, "Recipe", "Failed to create recipe")
	}
	return utils.SuccessResponse(c, utils.CreatedRecipeStruct{RecipeID: recipe.ID}, fiber.StatusCreated)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Description Recipe detail with ingredient amounts scaled to the requested servings
// @Tags Recipes
// @Produce json
// @Security CookieAuth
// @Param id path string true "Recipe ID"
// @Param servings query int false "Servings to scale to"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.RecipeDetail}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id} [get]
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	servings := 0
	if raw := c.Query("servings"); raw != "" {
		servings = c.QueryInt("servings", -1)
		if servings < 1 {
			return types.NewValidationError([]string{"servings must be a positive integer"})
		}
	}

	detail, err := services.GetRecipe(c.UserContext(), h.DB, user.ID, c.Params("id"), servings)
	if err != nil {
		return serviceError(err, "Recipe", "Failed to load recipe")
	}
	return utils.SuccessResponse(c, detail, fiber.StatusOK)
}

// UpdateRecipe handles PUT /api/recipes/:id
// @Summary Replace a recipe
// @Description Replaces the recipe's fields, ingredients and steps
// @Tags Recipes
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Recipe ID"
// @Param body body RecipeRequest true "Recipe"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id} [put]
func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	req, err := parseRecipe(c)
	if err != nil {
		return err
	}

	if err := services.UpdateRecipe(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id"), req.input()); err != nil {
		return serviceError(err, "Recipe", "Failed to update recipe")
	}
	return utils.MessageResponse(c, "Recipe updated", fiber.StatusOK)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Description Deletes the recipe with its ingredients, steps and cooking logs
// @Tags Recipes
// @Produce json
// @Security CookieAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := services.DeleteRecipe(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id")); err != nil {
		return serviceError(err, "Recipe", "Failed to delete recipe")
	}
	return utils.MessageResponse(c, "Recipe deleted", fiber.StatusOK)
}

// GetRecipeSteps handles GET /api/recipes/:id/steps
// @Summary Cooking mode steps
// @Tags Recipes
// @Produce json
// @Security CookieAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.RecipeSteps}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/steps [get]
func (h *RecipeHandler) GetRecipeSteps(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	steps, err := services.GetRecipeSteps(c.UserContext(), h.DB, user.ID, c.Params("id"))
	if err != nil {
		return serviceError(err, "Recipe", "Failed to load recipe steps")
	}
	return utils.SuccessResponse(c, steps, fiber.StatusOK)
}

// GetRecipeLogs handles GET /api/recipes/:id/logs
// @Summary Recipe cooking history
// @Tags Recipes
// @Produce json
// @Security CookieAuth
// @Param id path string true "Recipe ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.LogSummary}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/logs [get]
func (h *RecipeHandler) GetRecipeLogs(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	logs, err := services.GetRecipeLogs(c.UserContext(), h.DB, user.ID, c.Params("id"))
	if err != nil {
		return serviceError(err, "Recipe", "Failed to load recipe logs")
	}
	return utils.SuccessResponse(c, logs, fiber.StatusOK)
}
