package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

// RelationService handles the user->recipe edges (favorites and shopping
// cart). Both edge kinds share the same add/remove contract, so the logic
// is parameterized by the edge type instead of duplicated per table.
type RelationService struct {
	db *gorm.DB
}

// NewRelationService creates a new relation service
func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// AddFavorite marks a recipe as favorited by the user
func (s *RelationService) AddFavorite(userID, recipeID uuid.UUID) error {
	edge := models.Favorite{UserID: userID, RecipeID: recipeID}
	return addEdge(s.db, &edge, "recipe already favorited")
}

// RemoveFavorite removes a favorite edge
func (s *RelationService) RemoveFavorite(userID, recipeID uuid.UUID) error {
	return removeEdge[models.Favorite](s.db, userID, recipeID, "favorite")
}

// AddToCart adds a recipe to the user's shopping cart
func (s *RelationService) AddToCart(userID, recipeID uuid.UUID) error {
	edge := models.ShoppingCart{UserID: userID, RecipeID: recipeID}
	return addEdge(s.db, &edge, "recipe already in shopping cart")
}

// RemoveFromCart removes a recipe from the user's shopping cart
func (s *RelationService) RemoveFromCart(userID, recipeID uuid.UUID) error {
	return removeEdge[models.ShoppingCart](s.db, userID, recipeID, "shopping cart entry")
}

// IsFavorited reports whether the user has favorited the recipe
func (s *RelationService) IsFavorited(userID, recipeID uuid.UUID) bool {
	return hasEdge[models.Favorite](s.db, userID, recipeID)
}

// IsInCart reports whether the recipe is in the user's shopping cart
func (s *RelationService) IsInCart(userID, recipeID uuid.UUID) bool {
	return hasEdge[models.ShoppingCart](s.db, userID, recipeID)
}

// addEdge creates the edge iff it does not already exist. A duplicate, or a
// unique-constraint violation from a racing writer, yields the same stable
// conflict error.
func addEdge[E models.UserRecipeEdge](db *gorm.DB, edge *E, duplicateMessage string) error {
	userID, recipeID := edgeKey(edge)

	var recipeCount int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&recipeCount).Error; err != nil {
		return apperrors.NewDatabaseError("failed to check recipe", err)
	}
	if recipeCount == 0 {
		return apperrors.NewNotFoundError("recipe")
	}

	var existing int64
	var probe E
	if err := db.Model(&probe).Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&existing).Error; err != nil {
		return apperrors.NewDatabaseError("failed to check edge", err)
	}
	if existing > 0 {
		return apperrors.NewConflictError(duplicateMessage)
	}

	if err := db.Create(edge).Error; err != nil {
		return apperrors.TranslateDBError(err, duplicateMessage)
	}
	return nil
}

// removeEdge deletes the edge iff it exists
func removeEdge[E models.UserRecipeEdge](db *gorm.DB, userID, recipeID uuid.UUID, label string) error {
	var probe E
	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&probe)
	if result.Error != nil {
		return apperrors.NewDatabaseError("failed to delete edge", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(label)
	}
	return nil
}

func hasEdge[E models.UserRecipeEdge](db *gorm.DB, userID, recipeID uuid.UUID) bool {
	var count int64
	var probe E
	db.Model(&probe).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count)
	return count > 0
}

func edgeKey[E models.UserRecipeEdge](edge *E) (uuid.UUID, uuid.UUID) {
	switch e := any(edge).(type) {
	case *models.Favorite:
		return e.UserID, e.RecipeID
	case *models.ShoppingCart:
		return e.UserID, e.RecipeID
	}
	return uuid.Nil, uuid.Nil
}
