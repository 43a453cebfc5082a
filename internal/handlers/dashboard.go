package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// DashboardHandler handles the dashboard route
type DashboardHandler struct {
	DB       *gorm.DB
	Calendar services.Calendar
}

// GetDashboard handles GET /api/dashboard
// @Summary Dashboard
// @Description Monthly cooking counts and success rate, items expiring within 7 days and the most recent log
// @Tags Dashboard
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=services.Dashboard}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	dashboard, err := services.GetDashboard(c.UserContext(), h.DB, h.Calendar, user.ID)
	if err != nil {
		return serviceError(err, "Dashboard", "Failed to load dashboard")
	}
	return utils.SuccessResponse(c, dashboard, fiber.StatusOK)
}
