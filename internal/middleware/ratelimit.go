package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/localnerve/recipe-journal/internal/types"
)

// RateLimit allows max requests per client IP per window
func RateLimit(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return &types.CustomError{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests, try again later",
				Type:    types.ErrTypeRateLimit,
			}
		},
	})
}
