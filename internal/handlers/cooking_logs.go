package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// CookingLogHandler handles cooking log routes
type CookingLogHandler struct {
	DB *gorm.DB
}

// CookingLogRequest is the create payload for a cooking log
type CookingLogRequest struct {
	RecipeID   string     `json:"recipe_id" validate:"required"`
	Status     string     `json:"status" validate:"required,oneof=SUCCESS REGRET FAIL"`
	LessonNote string     `json:"lesson_note" validate:"max=2000"`
	Companion  string     `json:"companion" validate:"max=100"`
	CookedAt   *time.Time `json:"cooked_at"`
}

// CookingLogPatchRequest carries optional changes to a log
type CookingLogPatchRequest struct {
	Status     *string    `json:"status" validate:"omitempty,oneof=SUCCESS REGRET FAIL"`
	LessonNote *string    `json:"lesson_note" validate:"omitempty,max=2000"`
	Companion  *string    `json:"companion" validate:"omitempty,max=100"`
	CookedAt   *time.Time `json:"cooked_at"`
}

// ListCookingLogs handles GET /api/cooking-logs
// @Summary List cooking logs
// @Description Newest first, annotated with the recipe title, optionally for one recipe
// @Tags CookingLogs
// @Produce json
// @Security CookieAuth
// @Param recipe_id query string false "Recipe ID filter"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.CookingLogView}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /cooking-logs [get]
func (h *CookingLogHandler) ListCookingLogs(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	logs, err := services.ListCookingLogs(c.UserContext(), h.DB, user.ID, strings.TrimSpace(c.Query("recipe_id")))
	if err != nil {
		return serviceError(err, "Cooking log", "Failed to load cooking logs")
	}
	return utils.SuccessResponse(c, logs, fiber.StatusOK)
}

// CreateCookingLog handles POST /api/cooking-logs
// @Summary Record a cooking outcome
// @Tags CookingLogs
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body CookingLogRequest true "Cooking log"
// @Success 201 {object} utils.SuccessResponseStruct{data=utils.CreatedLogStruct}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /cooking-logs [post]
func (h *CookingLogHandler) CreateCookingLog(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CookingLogRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.RecipeID = strings.TrimSpace(req.RecipeID)
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	if err := check(&req); err != nil {
		return err
	}

	log, err := services.CreateCookingLog(h.DB.WithContext(c.UserContext()), user.ID, services.CookingLogInput{
		RecipeID:   req.RecipeID,
		Status:     req.Status,
		LessonNote: req.LessonNote,
		Companion:  req.Companion,
		CookedAt:   req.CookedAt,
	})
	if err != nil {
		return serviceError(err, "Recipe", "Failed to create cooking log")
	}
	return utils.SuccessResponse(c, utils.CreatedLogStruct{LogID: log.ID}, fiber.StatusCreated)
}

// UpdateCookingLog handles PUT /api/cooking-logs/:id
// @Summary Update a cooking log
// @Tags CookingLogs
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Log ID"
// @Param body body CookingLogPatchRequest true "Changes"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /cooking-logs/{id} [put]
func (h *CookingLogHandler) UpdateCookingLog(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req CookingLogPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		req.Status = &status
	}
	if err := check(&req); err != nil {
		return err
	}

	_, err = services.UpdateCookingLog(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id"), services.CookingLogPatch{
		Status:     req.Status,
		LessonNote: req.LessonNote,
		Companion:  req.Companion,
		CookedAt:   req.CookedAt,
	})
	if err != nil {
		return serviceError(err, "Cooking log", "Failed to update cooking log")
	}
	return utils.MessageResponse(c, "Cooking log updated", fiber.StatusOK)
}

// DeleteCookingLog handles DELETE /api/cooking-logs/:id
// @Summary Delete a cooking log
// @Tags CookingLogs
// @Produce json
// @Security CookieAuth
// @Param id path string true "Log ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /cooking-logs/{id} [delete]
func (h *CookingLogHandler) DeleteCookingLog(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := services.DeleteCookingLog(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id")); err != nil {
		return serviceError(err, "Cooking log", "Failed to delete cooking log")
	}
	return utils.MessageResponse(c, "Cooking log deleted", fiber.StatusOK)
}
