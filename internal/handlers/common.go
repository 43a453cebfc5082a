// common.go
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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/extraction"
	"github.com/localnerve/recipe-journal/internal/middleware"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/types"
	"github.com/localnerve/recipe-journal/internal/utils"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessages flattens validator errors into one message per field
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		unit := ""
		if e.Kind() == reflect.String {
			unit = " characters"
		}

		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "min", "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s%s", field, e.Param(), unit))
		case "max", "lte":
			messages = append(messages, fmt.Sprintf("%s must be at most %s%s", field, e.Param(), unit))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]", field, e.Param()))
		case "eq":
			messages = append(messages, fmt.Sprintf("%s must be %s", field, e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return messages
}

// check runs struct validation and merges in any inline range errors
func check(s interface{}, extra ...string) error {
	var messages []string
	if err := validate.Struct(s); err != nil {
		messages = validationMessages(err)
	}
	messages = append(messages, extra...)
	if len(messages) > 0 {
		return types.NewValidationError(messages)
	}
	return nil
}

// parseBody decodes a JSON request body into out
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "Invalid request body",
			Type:    types.ErrTypeValidation,
			Errors:  []string{err.Error()},
		}
	}
	return nil
}

// currentUser returns the authenticated user or a 401
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil, &types.CustomError{
			Code:    fiber.StatusUnauthorized,
			Message: "Authentication required",
			Type:    types.ErrTypeAuth,
		}
	}
	return user, nil
}

// serviceError maps service sentinels to responses; anything else is a 500 with action as the message
func serviceError(err error, resource, action string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return &types.CustomError{
			Code:    fiber.StatusNotFound,
			Message: fmt.Sprintf("%s not found", resource),
			Type:    types.ErrTypeNotFound,
		}
	case errors.Is(err, services.ErrForbidden):
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("%s belongs to another user", resource),
			Type:    types.ErrTypeForbidden,
		}
	case errors.Is(err, services.ErrUnknownIngredient):
		return types.NewValidationError([]string{"master_id does not match a catalog ingredient"})
	}
	return types.NewInternalError(action, err)
}

// ErrorHandler renders every error returned through the handler chain as the error envelope
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		ce := toCustomError(err)
		if ce.Code >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Int("status", ce.Code),
				zap.String("type", ce.Type),
				zap.Error(err))
		}
		return utils.ErrorResponse(c, ce.Code, ce.Message, ce.Errors, ce.Detail)
	}
}

func toCustomError(err error) *types.CustomError {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return ce
	}

	var xe *extraction.Error
	if errors.As(err, &xe) {
		out := &types.CustomError{
			Code:    xe.StatusCode(),
			Message: "Failed to extract recipe",
			Type:    types.ErrTypeValidation,
			Detail:  xe.Message,
		}
		switch xe.Kind {
		case extraction.KindConfig:
			out.Type = types.ErrTypeConfig
		case extraction.KindUpstream:
			out.Type = types.ErrTypeUpstream
			out.Detail = xe.Error()
		}
		return out
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		errType := types.ErrTypeInternal
		switch {
		case fe.Code == fiber.StatusNotFound:
			errType = types.ErrTypeNotFound
		case fe.Code < fiber.StatusInternalServerError:
			errType = types.ErrTypeValidation
		}
		return &types.CustomError{Code: fe.Code, Message: fe.Message, Type: errType}
	}

	return types.NewInternalError("Internal server error", err)
}
