package models

// GetAllModels returns all model types for migration
func GetAllModels() []interface{} {
	return []interface{}{
		// User models
		&User{},
		&Follow{},

		// Catalog models
		&Tag{},
		&Ingredient{},

		// Recipe models
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},

		// Edge models
		&Favorite{},
		&ShoppingCart{},
	}
}
