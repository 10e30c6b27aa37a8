package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/auth"
	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))
	return db
}

func TestUserServiceCreate(t *testing.T) {
	db := setupUserTestDB(t)
	service := NewUserService(db, viper.New(), nil)

	t.Run("Success", func(t *testing.T) {
		user, err := service.CreateUser(CreateUserInput{
			Username:  "newuser",
			Email:     "new@example.com",
			FirstName: "Ada",
			LastName:  "Lovelace",
			Password:  "long enough",
		})
		require.NoError(t, err)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsAdmin)
		assert.NotEqual(t, "long enough", user.PasswordHash)
		assert.True(t, auth.CheckPasswordHash("long enough", user.PasswordHash))
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := service.CreateUser(CreateUserInput{
			Username: "newuser", Email: "second@example.com", Password: "long enough",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := service.CreateUser(CreateUserInput{
			Username: "seconduser", Email: "new@example.com", Password: "long enough",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := service.CreateUser(CreateUserInput{
			Username: "another", Email: "a@example.com", Password: "short",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("BadEmail", func(t *testing.T) {
		_, err := service.CreateUser(CreateUserInput{
			Username: "another", Email: "not-an-email", Password: "long enough",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("BadFirstName", func(t *testing.T) {
		_, err := service.CreateUser(CreateUserInput{
			Username: "another", Email: "a@example.com",
			FirstName: "Ada123", Password: "long enough",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("LookupByLogin", func(t *testing.T) {
		byName, err := service.GetUserByLogin("newuser")
		require.NoError(t, err)
		byEmail, err := service.GetUserByLogin("new@example.com")
		require.NoError(t, err)
		assert.Equal(t, byName.ID, byEmail.ID)
	})
}

func TestUserServiceFollow(t *testing.T) {
	db := setupUserTestDB(t)
	service := NewUserService(db, viper.New(), nil)

	follower := &models.User{Username: "follower", Email: "f@example.com", PasswordHash: "x"}
	author := &models.User{Username: "author", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(follower).Error)
	require.NoError(t, db.Create(author).Error)

	t.Run("Follow", func(t *testing.T) {
		require.NoError(t, service.Follow(follower.ID, author.ID))
		assert.True(t, service.IsSubscribed(follower.ID, author.ID))
		// The edge is directed
		assert.False(t, service.IsSubscribed(author.ID, follower.ID))
	})

	t.Run("DoubleFollowConflicts", func(t *testing.T) {
		err := service.Follow(follower.ID, author.ID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("SelfFollowConflicts", func(t *testing.T) {
		err := service.Follow(follower.ID, follower.ID)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("UnknownAuthor", func(t *testing.T) {
		err := service.Follow(follower.ID, uuid.New())
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Subscriptions", func(t *testing.T) {
		authors, total, err := service.Subscriptions(follower.ID, 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, authors, 1)
		assert.Equal(t, "author", authors[0].Username)
	})

	t.Run("Unfollow", func(t *testing.T) {
		require.NoError(t, service.Unfollow(follower.ID, author.ID))
		assert.False(t, service.IsSubscribed(follower.ID, author.ID))

		err := service.Unfollow(follower.ID, author.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserServiceRecipes(t *testing.T) {
	db := setupUserTestDB(t)
	service := NewUserService(db, viper.New(), nil)

	author := &models.User{Username: "author", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(author).Error)

	for i := 0; i < 4; i++ {
		recipe := &models.Recipe{
			Name: fmt.Sprintf("Recipe %d", i), AuthorID: author.ID,
			Text: "Cook.", CookingTime: 5,
		}
		require.NoError(t, db.Create(recipe).Error)
	}

	assert.EqualValues(t, 4, service.RecipesCount(author.ID))

	t.Run("LimitCapsPreviews", func(t *testing.T) {
		recipes, err := service.RecentRecipes(author.ID, 2)
		require.NoError(t, err)
		assert.Len(t, recipes, 2)
	})

	t.Run("NonPositiveLimitReturnsAll", func(t *testing.T) {
		recipes, err := service.RecentRecipes(author.ID, 0)
		require.NoError(t, err)
		assert.Len(t, recipes, 4)
	})
}

func TestUserServiceList(t *testing.T) {
	db := setupUserTestDB(t)
	service := NewUserService(db, viper.New(), nil)

	for _, name := range []string{"charlie", "alice", "bob"} {
		user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(user).Error)
	}

	users, total, err := service.ListUsers(1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "charlie", users[2].Username)
}
