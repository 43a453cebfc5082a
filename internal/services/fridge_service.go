// fridge_service.go
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

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/localnerve/recipe-journal/internal/models"
	"gorm.io/gorm"
)

// MasterSearchLimit caps ingredient catalog search results
const MasterSearchLimit = 50

// FridgeInput is a validated fridge item create payload
type FridgeInput struct {
	MasterID   *uint64
	Name       string
	Quantity   *float64
	Unit       string
	ExpiryDate *models.CalendarDate
}

// FridgePatch carries optional fridge item changes
type FridgePatch struct {
	Name       *string
	Quantity   *float64
	Unit       *string
	ExpiryDate *models.CalendarDate
}

// FridgeItemView is a fridge item with its display name and days remaining
type FridgeItemView struct {
	ID         string               `json:"id"`
	MasterID   *uint64              `json:"master_id"`
	Name       string               `json:"name"`
	Category   string               `json:"category"`
	Icon       string               `json:"icon"`
	Quantity   *float64             `json:"quantity"`
	Unit       string               `json:"unit"`
	ExpiryDate *models.CalendarDate `json:"expiry_date"`
	DDay       *int                 `json:"d_day"`
	CreatedAt  time.Time            `json:"created_at"`
}

func viewFridgeItem(cal Calendar, item *models.FridgeItem) FridgeItemView {
	v := FridgeItemView{
		ID:         item.ID,
		MasterID:   item.MasterID,
		Name:       item.DisplayName(),
		Quantity:   item.Quantity,
		Unit:       item.Unit,
		ExpiryDate: item.ExpiryDate,
		CreatedAt:  item.CreatedAt,
	}
	if item.Master != nil {
		v.Category = item.Master.Category
		v.Icon = item.Master.Icon
	}
	if item.ExpiryDate != nil {
		d := cal.DDay(*item.ExpiryDate)
		v.DDay = &d
	}
	return v
}

// expiryOrder sorts dated items first by date, undated items last
const expiryOrder = "CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, created_at ASC"

// ListFridgeItems returns the caller's items ordered by expiry, undated last
func ListFridgeItems(ctx context.Context, db *gorm.DB, cal Calendar, userID string) ([]FridgeItemView, error) {
	var items []models.FridgeItem
	err := db.WithContext(ctx).
		Preload("Master").
		Where("user_id = ?", userID).
		Order(expiryOrder).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	result := make([]FridgeItemView, 0, len(items))
	for i := range items {
		result = append(result, viewFridgeItem(cal, &items[i]))
	}
	return result, nil
}

// findMaster resolves the catalog entry by id, or by exact name when no id is given
func findMaster(db *gorm.DB, in FridgeInput) (*models.IngredientMaster, error) {
	var master models.IngredientMaster
	if in.MasterID != nil {
		if err := db.First(&master, "id = ?", *in.MasterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownIngredient
			}
			return nil, err
		}
		return &master, nil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil
	}
	var matches []models.IngredientMaster
	if err := db.Where("name = ?", name).Limit(1).Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// AddFridgeItem stores an item, defaulting unit and expiry from the catalog entry
func AddFridgeItem(db *gorm.DB, cal Calendar, userID string, in FridgeInput) (*models.FridgeItem, error) {
	master, err := findMaster(db, in)
	if err != nil {
		return nil, err
	}

	item := models.FridgeItem{
		UserID:     userID,
		Quantity:   in.Quantity,
		Unit:       in.Unit,
		ExpiryDate: in.ExpiryDate,
	}
	if master != nil {
		id := master.ID
		item.MasterID = &id
		item.Master = master
		if item.Unit == "" {
			item.Unit = master.DefaultUnit
		}
		if item.ExpiryDate == nil && master.BaseShelfLife > 0 {
			expiry := cal.Today().AddDays(master.BaseShelfLife)
			item.ExpiryDate = &expiry
		}
	} else {
		item.CustomName = strings.TrimSpace(in.Name)
	}

	if err := db.Omit("Master").Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func loadOwnedFridgeItem(db *gorm.DB, userID, itemID string) (*models.FridgeItem, error) {
	var item models.FridgeItem
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkOwner(item.UserID, userID); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateFridgeItem applies patch to an item the caller owns
func UpdateFridgeItem(db *gorm.DB, userID, itemID string, patch FridgePatch) (*models.FridgeItem, error) {
	var updated *models.FridgeItem
	err := db.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedFridgeItem(tx, userID, itemID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			// A renamed item no longer follows its catalog entry
			updates["custom_name"] = strings.TrimSpace(*patch.Name)
			updates["master_id"] = nil
		}
		if patch.Quantity != nil {
			updates["quantity"] = *patch.Quantity
		}
		if patch.Unit != nil {
			updates["unit"] = *patch.Unit
		}
		if patch.ExpiryDate != nil {
			updates["expiry_date"] = *patch.ExpiryDate
		}
		if len(updates) > 0 {
			if err := tx.Model(item).Updates(updates).Error; err != nil {
				return err
			}
			if patch.Name != nil {
				item.CustomName = strings.TrimSpace(*patch.Name)
				item.MasterID = nil
				item.Master = nil
			}
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFridgeItem removes an item the caller owns
func DeleteFridgeItem(db *gorm.DB, userID, itemID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		item, err := loadOwnedFridgeItem(tx, userID, itemID)
		if err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
}

// SearchIngredientMaster finds catalog entries whose name contains q, case-insensitively
func SearchIngredientMaster(ctx context.Context, db *gorm.DB, q string) ([]models.IngredientMaster, error) {
	query := db.WithContext(ctx).Order("name ASC").Limit(MasterSearchLimit)
	if q = strings.TrimSpace(q); q != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var entries []models.IngredientMaster
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
