package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/types"
	"gorm.io/gorm"
)

const userKey = "user"

// AuthUser validates the session cookie and stores the local user in context
func AuthUser(validator services.SessionValidator, db *gorm.DB, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, validator, db, cookieName)
		if err != nil {
			return err
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth stores the local user when a valid session is present.
// Missing or invalid sessions pass through unauthenticated.
func OptionalAuth(validator services.SessionValidator, db *gorm.DB, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := authenticate(c, validator, db, cookieName)
		if err != nil {
			if ce, ok := err.(*types.CustomError); ok && ce.Code == fiber.StatusUnauthorized {
				return c.Next()
			}
			return err
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// authenticate performs the session check and user resolution
func authenticate(c *fiber.Ctx, validator services.SessionValidator, db *gorm.DB, cookieName string) (*models.User, error) {
	session := c.Cookies(cookieName)
	if session == "" {
		return nil, &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: fmt.Sprintf("Authorizer cookie %q not found", cookieName),
			Type:    types.ErrTypeAuth,
		}
	}

	identity, err := validator.ValidateSession(c.UserContext(), session)
	if err != nil {
		return nil, &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "Invalid session",
			Type:    types.ErrTypeAuth,
			Detail:  err.Error(),
		}
	}

	user, err := services.ResolveUser(db.WithContext(c.UserContext()), identity)
	if err != nil {
		return nil, types.NewInternalError("Failed to resolve user", err)
	}
	return user, nil
}

// CurrentUser returns the user stored by AuthUser or OptionalAuth, or nil
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
