// data.go
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

package helpers

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/localnerve/recipe-journal/internal/models"
	"gorm.io/gorm"
)

// CreateTestUser creates a user with default settings
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Provider:     "google",
		SocialID:     gofakeit.UUID(),
		Nickname:     gofakeit.Username(),
		Email:        gofakeit.Email(),
		ProfileImage: gofakeit.URL(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	settings := models.DefaultUserSettings(user.ID)
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("Failed to create user settings: %v", err)
	}
	return &user
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// CreateTestRecipe creates a recipe with two ingredients and two steps
func CreateTestRecipe(t *testing.T, db *gorm.DB, userID string, servings int) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		UserID:     userID,
		Title:      gofakeit.Dessert(),
		Servings:   servings,
		Difficulty: models.DifficultyEasy,
		Ingredients: []models.RecipeIngredient{
			{Name: gofakeit.Fruit(), Amount: Float(200), Unit: "g", SortOrder: 1},
			{Name: "salt", Amount: nil, Unit: "", SortOrder: 2},
		},
		Steps: []models.RecipeStep{
			{StepOrder: 1, Instruction: gofakeit.Sentence(6)},
			{StepOrder: 2, Instruction: gofakeit.Sentence(6), TimerSeconds: 300},
		},
	}
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("Failed to create recipe: %v", err)
	}
	return &recipe
}

// CreateTestLog creates a cooking log with the given status and time
func CreateTestLog(t *testing.T, db *gorm.DB, userID, recipeID, status string, cookedAt time.Time) *models.CookingLog {
	t.Helper()
	log := models.CookingLog{
		UserID:     userID,
		RecipeID:   recipeID,
		Status:     status,
		LessonNote: gofakeit.Sentence(5),
		CookedAt:   cookedAt.UTC(),
	}
	if err := db.Create(&log).Error; err != nil {
		t.Fatalf("Failed to create cooking log: %v", err)
	}
	return &log
}

// CreateTestMaster creates a catalog entry
func CreateTestMaster(t *testing.T, db *gorm.DB, name, unit string, shelfLife int) *models.IngredientMaster {
	t.Helper()
	master := models.IngredientMaster{
		Name:          name,
		Category:      "채소",
		Icon:          "🥬",
		DefaultUnit:   unit,
		BaseShelfLife: shelfLife,
	}
	if err := db.Create(&master).Error; err != nil {
		t.Fatalf("Failed to create ingredient master: %v", err)
	}
	return &master
}

// CreateTestFridgeItem creates a custom-named fridge item
func CreateTestFridgeItem(t *testing.T, db *gorm.DB, userID string, expiry *models.CalendarDate) *models.FridgeItem {
	t.Helper()
	item := models.FridgeItem{
		UserID:     userID,
		CustomName: gofakeit.Vegetable(),
		Quantity:   Float(1),
		Unit:       "개",
		ExpiryDate: expiry,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("Failed to create fridge item: %v", err)
	}
	return &item
}
