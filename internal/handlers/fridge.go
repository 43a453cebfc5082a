package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipe-journal/internal/models"
	"github.com/localnerve/recipe-journal/internal/services"
	"github.com/localnerve/recipe-journal/internal/types"
	"github.com/localnerve/recipe-journal/internal/utils"
	"gorm.io/gorm"
)

// FridgeHandler handles fridge inventory and ingredient catalog routes
type FridgeHandler struct {
	DB       *gorm.DB
	Calendar services.Calendar
}

// FridgeRequest is the add-item payload. Either master_id or name is required.
type FridgeRequest struct {
	MasterID   types.FlexNumber[uint64]  `json:"master_id" swaggertype:"integer"`
	Name       string                    `json:"name" validate:"max=100"`
	Quantity   types.FlexNumber[float64] `json:"quantity" swaggertype:"number"`
	Unit       string                    `json:"unit" validate:"max=50"`
	ExpiryDate *models.CalendarDate      `json:"expiry_date" swaggertype:"string" example:"2026-10-22"`
}

// FridgePatchRequest carries optional changes to an item
type FridgePatchRequest struct {
	Name       *string                   `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity   types.FlexNumber[float64] `json:"quantity" swaggertype:"number"`
	Unit       *string                   `json:"unit" validate:"omitempty,max=50"`
	ExpiryDate *models.CalendarDate      `json:"expiry_date" swaggertype:"string" example:"2026-10-22"`
}

// ListFridge handles GET /api/fridge
// @Summary List fridge items
// @Description Items ordered by expiry date (undated last) with days remaining
// @Tags Fridge
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.FridgeItemView}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fridge [get]
func (h *FridgeHandler) ListFridge(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	items, err := services.ListFridgeItems(c.UserContext(), h.DB, h.Calendar, user.ID)
	if err != nil {
		return serviceError(err, "Fridge item", "Failed to load fridge items")
	}
	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// AddFridgeItem handles POST /api/fridge
// @Summary Add a fridge item
// @Description Links a catalog ingredient by master_id or exact name; unit and expiry default from the catalog
// @Tags Fridge
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body FridgeRequest true "Item"
// @Success 201 {object} utils.SuccessResponseStruct{data=utils.CreatedItemStruct}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fridge [post]
func (h *FridgeHandler) AddFridgeItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req FridgeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)

	var extra []string
	if !req.MasterID.Valid && req.Name == "" {
		extra = append(extra, "master_id or name is required")
	}
	if req.Quantity.Valid && req.Quantity.Value < 0 {
		extra = append(extra, "quantity must not be negative")
	}
	if err := check(&req, extra...); err != nil {
		return err
	}

	item, err := services.AddFridgeItem(h.DB.WithContext(c.UserContext()), h.Calendar, user.ID, services.FridgeInput{
		MasterID:   req.MasterID.Ptr(),
		Name:       req.Name,
		Quantity:   req.Quantity.Ptr(),
		Unit:       req.Unit,
		ExpiryDate: req.ExpiryDate,
	})
	if err != nil {
		return serviceError(err, "Fridge item", "Failed to add fridge item")
	}
	return utils.SuccessResponse(c, utils.CreatedItemStruct{ItemID: item.ID}, fiber.StatusCreated)
}

// UpdateFridgeItem handles PUT /api/fridge/:id
// @Summary Update a fridge item
// @Tags Fridge
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Item ID"
// @Param body body FridgePatchRequest true "Changes"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fridge/{id} [put]
func (h *FridgeHandler) UpdateFridgeItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req FridgePatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}

	var extra []string
	if req.Quantity.Valid && req.Quantity.Value < 0 {
		extra = append(extra, "quantity must not be negative")
	}
	if err := check(&req, extra...); err != nil {
		return err
	}

	_, err = services.UpdateFridgeItem(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id"), services.FridgePatch{
		Name:       req.Name,
		Quantity:   req.Quantity.Ptr(),
		Unit:       req.Unit,
		ExpiryDate: req.ExpiryDate,
	})
	if err != nil {
		return serviceError(err, "Fridge item", "Failed to update fridge item")
	}
	return utils.MessageResponse(c, "Fridge item updated", fiber.StatusOK)
}

// DeleteFridgeItem handles DELETE /api/fridge/:id
// @Summary Delete a fridge item
// @Tags Fridge
// @Produce json
// @Security CookieAuth
// @Param id path string true "Item ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /fridge/{id} [delete]
func (h *FridgeHandler) DeleteFridgeItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := services.DeleteFridgeItem(h.DB.WithContext(c.UserContext()), user.ID, c.Params("id")); err != nil {
		return serviceError(err, "Fridge item", "Failed to delete fridge item")
	}
	return utils.MessageResponse(c, "Fridge item deleted", fiber.StatusOK)
}

// SearchIngredients handles GET /api/ingredients/master
// @Summary Search the ingredient catalog
// @Description Case-insensitive substring match on name, at most 50 results
// @Tags Fridge
// @Produce json
// @Security CookieAuth
// @Param q query string false "Search text"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.IngredientMaster}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /ingredients/master [get]
func (h *FridgeHandler) SearchIngredients(c *fiber.Ctx) error {
	if _, err := currentUser(c); err != nil {
		return err
	}

	entries, err := services.SearchIngredientMaster(c.UserContext(), h.DB, c.Query("q"))
	if err != nil {
		return serviceError(err, "Ingredient", "Failed to search ingredients")
	}
	return utils.SuccessResponse(c, entries, fiber.StatusOK)
}
