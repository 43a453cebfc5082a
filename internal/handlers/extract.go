package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/extraction"
	"github.com/localnerve/recipe-journal/internal/types"
	"github.com/localnerve/recipe-journal/internal/utils"
)

// Extractor turns a URL into a structured recipe
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*extraction.Recipe, error)
}

// ExtractHandler handles the recipe extraction route
type ExtractHandler struct {
	Extractor Extractor
}

// ExtractRequest is the extraction payload
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractRecipe handles POST /api/recipes/extract
// @Summary Extract a recipe from a URL
// @Description Reads a video transcript or web page and structures it into a recipe. Nothing is stored.
// @Tags Recipes
// @Accept json
// @Produce json
// @Param body body ExtractRequest true "Source URL"
// @Success 200 {object} utils.SuccessResponseStruct{data=extraction.Recipe}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /recipes/extract [post]
func (h *ExtractHandler) ExtractRecipe(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "Failed to extract recipe",
			Type:    types.ErrTypeValidation,
			Errors:  []string{"url is required"},
			Detail:  "url is required",
		}
	}

	recipe, err := h.Extractor.Extract(c.UserContext(), url)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}
