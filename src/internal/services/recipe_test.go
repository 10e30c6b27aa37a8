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

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

type recipeFixture struct {
	db          *gorm.DB
	service     *RecipeService
	author      *models.User
	tags        []models.Tag
	ingredients []models.Ingredient
}

func setupRecipeFixture(t *testing.T) *recipeFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	f := &recipeFixture{
		db:      db,
		service: NewRecipeService(db, viper.New()),
		author:  &models.User{Username: "chef", Email: "chef@example.com", PasswordHash: "x"},
	}
	require.NoError(t, db.Create(f.author).Error)

	for i, seed := range []struct{ name, color, slug string }{
		{"Breakfast", "#E26C2D", "breakfast"},
		{"Dinner", "#49B64E", "dinner"},
	} {
		tag := models.Tag{Name: seed.name, Color: seed.color, Slug: seed.slug}
		require.NoError(t, db.Create(&tag).Error, "tag %d", i)
		f.tags = append(f.tags, tag)
	}

	for _, seed := range []struct{ name, unit string }{
		{"salt", "g"},
		{"flour", "g"},
		{"milk", "ml"},
	} {
		ingredient := models.Ingredient{Name: seed.name, MeasurementUnit: seed.unit}
		require.NoError(t, db.Create(&ingredient).Error)
		f.ingredients = append(f.ingredients, ingredient)
	}
	return f
}

func (f *recipeFixture) validInput(name string) RecipeInput {
	return RecipeInput{
		Name:        name,
		Text:        "Mix everything and bake.",
		Image:       "recipes/test.png",
		CookingTime: 30,
		TagIDs:      []uuid.UUID{f.tags[0].ID},
		Ingredients: []IngredientLineInput{
			{IngredientID: f.ingredients[0].ID, Amount: 10},
			{IngredientID: f.ingredients[1].ID, Amount: 200},
		},
	}
}

func TestRecipeServiceCreate(t *testing.T) {
	f := setupRecipeFixture(t)

	t.Run("Success", func(t *testing.T) {
		recipe, err := f.service.CreateRecipe(f.author.ID, f.validInput("Pancakes"))
		require.NoError(t, err)
		assert.Equal(t, "Pancakes", recipe.Name)
		assert.Equal(t, f.author.ID, recipe.AuthorID)
		assert.Len(t, recipe.Tags, 1)
		require.Len(t, recipe.Ingredients, 2)
		assert.Equal(t, "salt", recipe.Ingredients[0].Ingredient.Name)
	})

	t.Run("DuplicateNameSameAuthor", func(t *testing.T) {
		_, err := f.service.CreateRecipe(f.author.ID, f.validInput("Pancakes"))
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("SameNameOtherAuthor", func(t *testing.T) {
		other := &models.User{Username: "baker", Email: "baker@example.com", PasswordHash: "x"}
		require.NoError(t, f.db.Create(other).Error)

		_, err := f.service.CreateRecipe(other.ID, f.validInput("Pancakes"))
		assert.NoError(t, err)
	})

	t.Run("FailedCreateLeavesNothingBehind", func(t *testing.T) {
		var before int64
		f.db.Model(&models.RecipeIngredient{}).Count(&before)

		input := f.validInput("Broken")
		input.Ingredients = append(input.Ingredients, IngredientLineInput{
			IngredientID: uuid.New(), Amount: 5,
		})
		_, err := f.service.CreateRecipe(f.author.ID, input)
		require.Error(t, err)

		var after int64
		f.db.Model(&models.RecipeIngredient{}).Count(&after)
		assert.Equal(t, before, after)

		var count int64
		f.db.Model(&models.Recipe{}).Where("name = ?", "Broken").Count(&count)
		assert.EqualValues(t, 0, count)
	})
}

func TestRecipeServiceValidation(t *testing.T) {
	f := setupRecipeFixture(t)

	cases := []struct {
		name   string
		mutate func(*RecipeInput)
	}{
		{"EmptyName", func(in *RecipeInput) { in.Name = "" }},
		{"BadNameCharset", func(in *RecipeInput) { in.Name = "soup;drop" }},
		{"EmptyText", func(in *RecipeInput) { in.Text = "" }},
		{"CookingTimeZero", func(in *RecipeInput) { in.CookingTime = 0 }},
		{"CookingTimeTooHigh", func(in *RecipeInput) { in.CookingTime = 501 }},
		{"NoTags", func(in *RecipeInput) { in.TagIDs = nil }},
		{"DuplicateTags", func(in *RecipeInput) { in.TagIDs = append(in.TagIDs, in.TagIDs[0]) }},
		{"NoIngredients", func(in *RecipeInput) { in.Ingredients = nil }},
		{"DuplicateIngredients", func(in *RecipeInput) {
			in.Ingredients = append(in.Ingredients, in.Ingredients[0])
		}},
		{"AmountZero", func(in *RecipeInput) { in.Ingredients[0].Amount = 0 }},
		{"AmountTooHigh", func(in *RecipeInput) { in.Ingredients[0].Amount = 1001 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := f.validInput("Candidate")
			tc.mutate(&input)
			_, err := f.service.CreateRecipe(f.author.ID, input)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}

	t.Run("UnknownTag", func(t *testing.T) {
		input := f.validInput("Candidate")
		input.TagIDs = []uuid.UUID{uuid.New()}
		_, err := f.service.CreateRecipe(f.author.ID, input)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestRecipeServiceUpdate(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.service.CreateRecipe(f.author.ID, f.validInput("Bread"))
	require.NoError(t, err)

	t.Run("ReplacesAssociations", func(t *testing.T) {
		input := f.validInput("Bread")
		input.TagIDs = []uuid.UUID{f.tags[1].ID}
		input.Ingredients = []IngredientLineInput{
			{IngredientID: f.ingredients[2].ID, Amount: 250},
		}

		updated, err := f.service.UpdateRecipe(recipe.ID, f.author.ID, input)
		require.NoError(t, err)
		require.Len(t, updated.Tags, 1)
		assert.Equal(t, "Dinner", updated.Tags[0].Name)
		require.Len(t, updated.Ingredients, 1)
		assert.Equal(t, "milk", updated.Ingredients[0].Ingredient.Name)
		assert.Equal(t, 250, updated.Ingredients[0].Amount)

		// No stale join rows survive the replacement
		var count int64
		f.db.Model(&models.RecipeIngredient{}).Where("recipe_id = ?", recipe.ID).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("EmptyImageKeepsStored", func(t *testing.T) {
		input := f.validInput("Bread")
		input.Image = ""
		updated, err := f.service.UpdateRecipe(recipe.ID, f.author.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "recipes/test.png", updated.Image)
	})

	t.Run("OnlyAuthorCanUpdate", func(t *testing.T) {
		stranger := &models.User{Username: "stranger", Email: "s@example.com", PasswordHash: "x"}
		require.NoError(t, f.db.Create(stranger).Error)

		_, err := f.service.UpdateRecipe(recipe.ID, stranger.ID, f.validInput("Bread"))
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorTypeAuthorization, appErr.Type)
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		_, err := f.service.UpdateRecipe(uuid.New(), f.author.ID, f.validInput("Bread"))
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRecipeServiceDelete(t *testing.T) {
	f := setupRecipeFixture(t)

	recipe, err := f.service.CreateRecipe(f.author.ID, f.validInput("Soup"))
	require.NoError(t, err)

	// Edges pointing at the recipe must go with it
	require.NoError(t, f.db.Create(&models.Favorite{UserID: f.author.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, f.db.Create(&models.ShoppingCart{UserID: f.author.ID, RecipeID: recipe.ID}).Error)

	t.Run("OnlyAuthorCanDelete", func(t *testing.T) {
		stranger := &models.User{Username: "stranger", Email: "s@example.com", PasswordHash: "x"}
		require.NoError(t, f.db.Create(stranger).Error)
		err := f.service.DeleteRecipe(recipe.ID, stranger.ID)
		require.Error(t, err)
	})

	t.Run("CascadesToOwnedRows", func(t *testing.T) {
		require.NoError(t, f.service.DeleteRecipe(recipe.ID, f.author.ID))

		_, err := f.service.GetRecipe(recipe.ID)
		assert.True(t, apperrors.IsNotFound(err))

		for _, model := range []interface{}{
			&models.RecipeTag{}, &models.RecipeIngredient{},
			&models.Favorite{}, &models.ShoppingCart{},
		} {
			var count int64
			f.db.Model(model).Where("recipe_id = ?", recipe.ID).Count(&count)
			assert.EqualValues(t, 0, count, "%T", model)
		}
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		err := f.service.DeleteRecipe(recipe.ID, f.author.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRecipeServiceList(t *testing.T) {
	f := setupRecipeFixture(t)

	for i := 0; i < 5; i++ {
		input := f.validInput(fmt.Sprintf("Recipe %d", i))
		if i%2 == 0 {
			input.TagIDs = []uuid.UUID{f.tags[1].ID}
		}
		_, err := f.service.CreateRecipe(f.author.ID, input)
		require.NoError(t, err)
	}

	t.Run("All", func(t *testing.T) {
		recipes, total, err := f.service.ListRecipes(ListRecipesOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, recipes, 5)
	})

	t.Run("TagFilter", func(t *testing.T) {
		recipes, total, err := f.service.ListRecipes(ListRecipesOptions{
			TagSlugs: []string{"dinner"},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		for _, recipe := range recipes {
			require.Len(t, recipe.Tags, 1)
			assert.Equal(t, "dinner", recipe.Tags[0].Slug)
		}
	})

	t.Run("TagFilterIsUnion", func(t *testing.T) {
		_, total, err := f.service.ListRecipes(ListRecipesOptions{
			TagSlugs: []string{"breakfast", "dinner"},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
	})

	t.Run("AuthorFilter", func(t *testing.T) {
		other := &models.User{Username: "other", Email: "o@example.com", PasswordHash: "x"}
		require.NoError(t, f.db.Create(other).Error)

		_, total, err := f.service.ListRecipes(ListRecipesOptions{AuthorID: &other.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})

	t.Run("Pagination", func(t *testing.T) {
		recipes, total, err := f.service.ListRecipes(ListRecipesOptions{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		assert.Len(t, recipes, 2)
	})

	t.Run("MultiTagRecipeCountedOnce", func(t *testing.T) {
		input := f.validInput("Tagged Twice")
		input.TagIDs = []uuid.UUID{f.tags[0].ID, f.tags[1].ID}
		_, err := f.service.CreateRecipe(f.author.ID, input)
		require.NoError(t, err)

		recipes, total, err := f.service.ListRecipes(ListRecipesOptions{
			TagSlugs: []string{"breakfast", "dinner"},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 6, total)
		assert.Len(t, recipes, 6)
	})
}
