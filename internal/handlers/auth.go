package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/middleware"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles session introspection and signup completion
type AuthHandler struct {
	DB *gorm.DB
}

// AuthStatus is the session introspection result
type AuthStatus struct {
	Authenticated   bool         `json:"authenticated"`
	ProfileComplete bool         `json:"profile_complete"`
	User            *models.User `json:"user,omitempty"`
}

// SignupRequest completes a first-time signup
type SignupRequest struct {
	Nickname    string `json:"nickname" validate:"required,max=100"`
	TermsAgreed bool   `json:"terms_agreed"`
}

// Check handles GET /api/auth/check
// @Summary Session status
// @Description Reports whether the session cookie is valid. Never responds 401.
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=AuthStatus}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/check [get]
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return utils.SuccessResponse(c, AuthStatus{}, fiber.StatusOK)
	}
	return utils.SuccessResponse(c, AuthStatus{
		Authenticated:   true,
		ProfileComplete: user.ProfileComplete,
		User:            user,
	}, fiber.StatusOK)
}

// Signup handles POST /api/auth/signup
// @Summary Complete signup
// @Description Records the nickname and terms agreement and marks the profile complete
// @Tags Auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body SignupRequest true "Signup"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req SignupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Nickname = strings.TrimSpace(req.Nickname)

	var extra []string
	if !req.TermsAgreed {
		extra = append(extra, "terms_agreed must be true")
	}
	if err := check(&req, extra...); err != nil {
		return err
	}

	updated, err := services.CompleteSignup(h.DB.WithContext(c.UserContext()), user.ID, req.Nickname, time.Now())
	if err != nil {
		return serviceError(err, "User", "Failed to complete signup")
	}
	return utils.SuccessResponse(c, updated, fiber.StatusOK)
}
