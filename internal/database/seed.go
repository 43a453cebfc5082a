package database

import (
	"encoding/json"
	"fmt"

	"github.com/localnerve/recipe-journal/data"
	"github.com/localnerve/recipe-journal/internal/models"
	"gorm.io/gorm"
)

// LoadCatalog decodes the embedded ingredient catalog
func LoadCatalog() ([]models.IngredientMaster, error) {
	var entries []models.IngredientMaster
	if err := json.Unmarshal(data.IngredientCatalog, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ingredient catalog: %w", err)
	}
	return entries, nil
}

// SeedIngredientMaster inserts the embedded catalog when the table is empty.
// It returns the number of rows inserted.
func SeedIngredientMaster(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.IngredientMaster{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ingredient catalog: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	entries, err := LoadCatalog()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := db.CreateInBatches(&entries, 100).Error; err != nil {
		return 0, fmt.Errorf("failed to seed ingredient catalog: %w", err)
	}
	return len(entries), nil
}
