package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles profile, settings and account routes
type UserHandler struct {
	DB *gorm.DB
}

// GetProfile handles GET /api/user/profile
// @Summary Get the caller's profile
// @Tags User
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	profile, err := services.GetUser(h.DB.WithContext(c.UserContext()), user.ID)
	if err != nil {
		return serviceError(err, "User", "Failed to load profile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// UpdateProfile handles PUT /api/user/profile
// @Summary Update the caller's profile
// @Description Updates nickname and profile image, and optionally settings
// @Tags User
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.ProfilePatch true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var patch services.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	if patch.Nickname != nil {
		nickname := strings.TrimSpace(*patch.Nickname)
		patch.Nickname = &nickname
	}
	if err := check(&patch); err != nil {
		return err
	}

	profile, err := services.UpdateProfile(h.DB.WithContext(c.UserContext()), user.ID, patch)
	if err != nil {
		return serviceError(err, "User", "Failed to update profile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// GetSettings handles GET /api/user/settings
// @Summary Get the caller's settings
// @Tags User
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=models.UserSettings}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/settings [get]
func (h *UserHandler) GetSettings(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	settings, err := services.GetSettings(h.DB.WithContext(c.UserContext()), user.ID)
	if err != nil {
		return serviceError(err, "Settings", "Failed to load settings")
	}
	return utils.SuccessResponse(c, settings, fiber.StatusOK)
}

// UpdateSettings handles PUT /api/user/settings
// @Summary Update the caller's settings
// @Tags User
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.SettingsPatch true "Changes"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.UserSettings}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user/settings [put]
func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var patch services.SettingsPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	if err := check(&patch); err != nil {
		return err
	}

	settings, err := services.UpsertSettings(h.DB.WithContext(c.UserContext()), user.ID, &patch)
	if err != nil {
		return serviceError(err, "Settings", "Failed to update settings")
	}
	return utils.SuccessResponse(c, settings, fiber.StatusOK)
}

// DeleteAccount handles DELETE /api/user
// @Summary Delete the caller's account
// @Description Removes the user with all recipes, cooking logs, fridge items and settings
// @Tags User
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /user [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := services.DeleteUser(h.DB.WithContext(c.UserContext()), user.ID); err != nil {
		return serviceError(err, "User", "Failed to delete account")
	}
	return utils.MessageResponse(c, "Account deleted", fiber.StatusOK)
}
