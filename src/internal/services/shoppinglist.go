package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

// ShoppingListItem is one aggregated line of a user's shopping list
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int    `json:"total"`
}

// ShoppingListService computes the combined shopping list for a user's cart
type ShoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new shopping list service
func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate unions the ingredient lines of every recipe in the user's
// shopping cart, groups them by ingredient and sums the amounts. Grouping
// is by ingredient id; the display name and unit are joined out. The result
// is ordered by ingredient name ascending. An empty cart yields an empty
// slice. Amounts are bounded integers, so plain integer summation is exact.
func (s *ShoppingListService) Aggregate(userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("recipe_ingredients.ingredient_id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("failed to aggregate shopping list", err)
	}
	return items, nil
}

// Render formats aggregated items as the plain-text shopping list, one
// "{name} ({unit}) - {total}" line per ingredient, newline-joined
func (s *ShoppingListService) Render(items []ShoppingListItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s (%s) - %d", item.Name, item.MeasurementUnit, item.Total))
	}
	return strings.Join(lines, "\n")
}

// BuildList aggregates and renders the shopping list in one step
func (s *ShoppingListService) BuildList(userID uuid.UUID) (string, error) {
	items, err := s.Aggregate(userID)
	if err != nil {
		return "", err
	}
	return s.Render(items), nil
}
