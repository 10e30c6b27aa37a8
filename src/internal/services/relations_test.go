package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

func setupRelationTestDB(t *testing.T) (*gorm.DB, *models.User, *models.Recipe) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	user := &models.User{Username: "eater", Email: "eater@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)

	recipe := &models.Recipe{
		Name: "Omelette", AuthorID: user.ID,
		Text: "Beat and fry.", CookingTime: 10,
	}
	require.NoError(t, db.Create(recipe).Error)

	return db, user, recipe
}

func TestRelationServiceFavorites(t *testing.T) {
	db, user, recipe := setupRelationTestDB(t)
	service := NewRelationService(db)

	t.Run("Add", func(t *testing.T) {
		require.NoError(t, service.AddFavorite(user.ID, recipe.ID))
		assert.True(t, service.IsFavorited(user.ID, recipe.ID))
	})

	t.Run("DoubleAddConflicts", func(t *testing.T) {
		err := service.AddFavorite(user.ID, recipe.ID)
		assert.True(t, apperrors.IsConflict(err))

		var count int64
		db.Model(&models.Favorite{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		err := service.AddFavorite(user.ID, uuid.New())
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, service.RemoveFavorite(user.ID, recipe.ID))
		assert.False(t, service.IsFavorited(user.ID, recipe.ID))
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		err := service.RemoveFavorite(user.ID, recipe.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRelationServiceCart(t *testing.T) {
	db, user, recipe := setupRelationTestDB(t)
	service := NewRelationService(db)

	t.Run("Add", func(t *testing.T) {
		require.NoError(t, service.AddToCart(user.ID, recipe.ID))
		assert.True(t, service.IsInCart(user.ID, recipe.ID))
	})

	t.Run("DoubleAddConflicts", func(t *testing.T) {
		err := service.AddToCart(user.ID, recipe.ID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("EdgesAreIndependent", func(t *testing.T) {
		// The recipe sits in the cart but is not favorited
		assert.False(t, service.IsFavorited(user.ID, recipe.ID))

		require.NoError(t, service.AddFavorite(user.ID, recipe.ID))
		require.NoError(t, service.RemoveFromCart(user.ID, recipe.ID))
		assert.True(t, service.IsFavorited(user.ID, recipe.ID))
		assert.False(t, service.IsInCart(user.ID, recipe.ID))
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		err := service.RemoveFromCart(user.ID, recipe.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
