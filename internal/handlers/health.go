package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/config"
	"github.com/localnerve/recipe-journal/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports service health
type HealthHandler struct {
	DB     *gorm.DB
	Config *config.Config
}

// Health handles GET /health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, h.Config, h.DB)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
