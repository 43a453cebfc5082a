package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends {success: true, data}
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// MessageResponse sends {success: true, message}
func MessageResponse(c *fiber.Ctx, message string, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

// ErrorResponse sends {success: false, message, errors?, error?}
func ErrorResponse(c *fiber.Ctx, status int, message string, errs []string, detail string) error {
	body := fiber.Map{
		"success": false,
		"message": message,
	}
	if len(errs) > 0 {
		body["errors"] = errs
	}
	if detail != "" {
		body["error"] = detail
	}
	return c.Status(status).JSON(body)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Success bool     `json:"success" example:"false"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SuccessResponseStruct defines the schema for data responses
type SuccessResponseStruct struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data"`
}

// MessageResponseStruct defines the schema for message-only responses
type MessageResponseStruct struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

// CreatedRecipeStruct is the data of a recipe create response
type CreatedRecipeStruct struct {
	RecipeID string `json:"recipe_id"`
}

// CreatedItemStruct is the data of a fridge item create response
type CreatedItemStruct struct {
	ItemID string `json:"item_id"`
}

// CreatedLogStruct is the data of a cooking log create response
type CreatedLogStruct struct {
	LogID string `json:"log_id"`
}
