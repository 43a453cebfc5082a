// Package models contains the GORM models for the recipe journal.
package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserSettings{},
		&IngredientMaster{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeStep{},
		&CookingLog{},
		&FridgeItem{},
	}
}
