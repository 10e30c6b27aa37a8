package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
	"github.com/casapps/casrecipes/src/internal/validation"
)

// RecipeService handles recipe business logic
type RecipeService struct {
	db     *gorm.DB
	cfg    *viper.Viper
	limits validation.Limits
}

// NewRecipeService creates a new recipe service
func NewRecipeService(db *gorm.DB, cfg *viper.Viper) *RecipeService {
	return &RecipeService{
		db:     db,
		cfg:    cfg,
		limits: validation.LimitsFromConfig(cfg),
	}
}

// IngredientLineInput represents one ingredient line of a recipe payload
type IngredientLineInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput represents the candidate payload for a recipe write
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientLineInput
}

// validate applies the write-protocol checks that do not need the database
func (s *RecipeService) validate(input RecipeInput) error {
	if err := validation.ValidateName("name", input.Name); err != nil {
		return err
	}
	if len(input.Name) > s.limits.NameMax {
		return apperrors.NewValidationError("name",
			fmt.Sprintf("name must be at most %d characters", s.limits.NameMax))
	}
	if input.Text == "" {
		return apperrors.NewValidationError("text", "must not be empty")
	}
	if input.CookingTime < s.limits.CookingTimeMin || input.CookingTime > s.limits.CookingTimeMax {
		return apperrors.NewValidationError("cooking_time",
			fmt.Sprintf("must be between %d and %d", s.limits.CookingTimeMin, s.limits.CookingTimeMax))
	}

	if len(input.TagIDs) == 0 {
		return apperrors.NewValidationError("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]struct{}, len(input.TagIDs))
	for _, id := range input.TagIDs {
		if _, dup := seenTags[id]; dup {
			return apperrors.NewValidationError("tags", "duplicate tags are not allowed")
		}
		seenTags[id] = struct{}{}
	}

	if len(input.Ingredients) == 0 {
		return apperrors.NewValidationError("ingredients", "at least one ingredient is required")
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for i, line := range input.Ingredients {
		if _, dup := seenIngredients[line.IngredientID]; dup {
			return apperrors.NewValidationError("ingredients", "duplicate ingredients are not allowed")
		}
		seenIngredients[line.IngredientID] = struct{}{}
		if line.Amount < s.limits.AmountMin || line.Amount > s.limits.AmountMax {
			return apperrors.NewValidationError("ingredients",
				fmt.Sprintf("amount of ingredient line %d must be between %d and %d",
					i+1, s.limits.AmountMin, s.limits.AmountMax))
		}
	}
	return nil
}

// checkReferences verifies that every referenced tag and ingredient exists
func (s *RecipeService) checkReferences(tx *gorm.DB, input RecipeInput) error {
	var tagCount int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", input.TagIDs).Count(&tagCount).Error; err != nil {
		return apperrors.NewDatabaseError("failed to check tags", err)
	}
	if tagCount != int64(len(input.TagIDs)) {
		return apperrors.NewValidationError("tags", "unknown tag")
	}

	ingredientIDs := make([]uuid.UUID, 0, len(input.Ingredients))
	for _, line := range input.Ingredients {
		ingredientIDs = append(ingredientIDs, line.IngredientID)
	}
	var ingredientCount int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&ingredientCount).Error; err != nil {
		return apperrors.NewDatabaseError("failed to check ingredients", err)
	}
	if ingredientCount != int64(len(ingredientIDs)) {
		return apperrors.NewValidationError("ingredients", "unknown ingredient")
	}
	return nil
}

// checkNameConflict rejects a duplicate (name, author) pair, excluding the
// recipe itself on update
func (s *RecipeService) checkNameConflict(tx *gorm.DB, name string, authorID uuid.UUID, excludeID *uuid.UUID) error {
	query := tx.Model(&models.Recipe{}).Where("name = ? AND author_id = ?", name, authorID)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.NewDatabaseError("failed to check recipe name", err)
	}
	if count > 0 {
		return apperrors.NewConflictError("you already have a recipe with this name")
	}
	return nil
}

// writeAssociations replaces the tag and ingredient-line sets of a recipe.
// The end state exactly matches the submitted lines; no stale join row
// survives.
func (s *RecipeService) writeAssociations(tx *gorm.DB, recipeID uuid.UUID, input RecipeInput) error {
	if err := tx.Delete(&models.RecipeTag{}, "recipe_id = ?", recipeID).Error; err != nil {
		return apperrors.NewDatabaseError("failed to clear tags", err)
	}
	if err := tx.Delete(&models.RecipeIngredient{}, "recipe_id = ?", recipeID).Error; err != nil {
		return apperrors.NewDatabaseError("failed to clear ingredients", err)
	}

	for _, tagID := range input.TagIDs {
		link := models.RecipeTag{RecipeID: recipeID, TagID: tagID}
		if err := tx.Create(&link).Error; err != nil {
			return apperrors.TranslateDBError(err, "duplicate tag association")
		}
	}
	for _, line := range input.Ingredients {
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperrors.TranslateDBError(err, "duplicate ingredient association")
		}
	}
	return nil
}

// CreateRecipe creates a recipe with its tag and ingredient associations in
// a single transaction. A failed validation leaves prior state untouched.
func (s *RecipeService) CreateRecipe(authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Name:        input.Name,
		AuthorID:    authorID,
		Text:        input.Text,
		Image:       input.Image,
		CookingTime: input.CookingTime,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(tx, input); err != nil {
			return err
		}
		if err := s.checkNameConflict(tx, input.Name, authorID, nil); err != nil {
			return err
		}
		if err := tx.Create(recipe).Error; err != nil {
			return apperrors.TranslateDBError(err, "you already have a recipe with this name")
		}
		return s.writeAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(recipe.ID)
}

// UpdateRecipe replaces a recipe's fields and its full association sets.
// Only the author may update a recipe.
func (s *RecipeService) UpdateRecipe(recipeID, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("recipe")
		}
		return nil, apperrors.NewDatabaseError("failed to load recipe", err)
	}
	if recipe.AuthorID != authorID {
		return nil, apperrors.NewAuthorizationError("only the author can modify this recipe")
	}

	if err := s.validate(input); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(tx, input); err != nil {
			return err
		}
		if err := s.checkNameConflict(tx, input.Name, authorID, &recipe.ID); err != nil {
			return err
		}

		recipe.Name = input.Name
		recipe.Text = input.Text
		recipe.CookingTime = input.CookingTime
		if input.Image != "" {
			recipe.Image = input.Image
		}
		if err := tx.Save(&recipe).Error; err != nil {
			return apperrors.TranslateDBError(err, "you already have a recipe with this name")
		}
		return s.writeAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(recipe.ID)
}

// DeleteRecipe deletes a recipe and everything it owns: join rows and the
// favorite/cart edges pointing at it
func (s *RecipeService) DeleteRecipe(recipeID, authorID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("recipe")
		}
		return apperrors.NewDatabaseError("failed to load recipe", err)
	}
	if recipe.AuthorID != authorID {
		return apperrors.NewAuthorizationError("only the author can delete this recipe")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, owned := range []interface{}{
			&models.RecipeTag{},
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCart{},
		} {
			if err := tx.Delete(owned, "recipe_id = ?", recipeID).Error; err != nil {
				return apperrors.NewDatabaseError("failed to delete recipe relations", err)
			}
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error; err != nil {
			return apperrors.NewDatabaseError("failed to delete recipe", err)
		}
		return nil
	})
}

// GetRecipe retrieves a recipe with its associations
func (s *RecipeService) GetRecipe(recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.Preload("Tags").Preload("Ingredients.Ingredient").Preload("Author").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("recipe")
		}
		return nil, apperrors.NewDatabaseError("failed to load recipe", err)
	}
	return &recipe, nil
}

// ListRecipesOptions describes filters and pagination for recipe listings
type ListRecipesOptions struct {
	TagSlugs    []string
	AuthorID    *uuid.UUID
	FavoritedBy *uuid.UUID
	InCartOf    *uuid.UUID
	Page        int
	Limit       int
}

// ListRecipes returns a paginated list of recipes, newest first
func (s *RecipeService) ListRecipes(opts ListRecipesOptions) ([]models.Recipe, int64, error) {
	query := s.db.Model(&models.Recipe{})

	// A recipe carrying several of the requested tags joins into several
	// rows, so tag-filtered queries must deduplicate
	distinct := false
	if len(opts.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", opts.TagSlugs)
		distinct = true
	}
	if opts.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *opts.AuthorID)
	}
	if opts.FavoritedBy != nil {
		query = query.Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *opts.FavoritedBy)
	}
	if opts.InCartOf != nil {
		query = query.Joins("JOIN shopping_carts ON shopping_carts.recipe_id = recipes.id").
			Where("shopping_carts.user_id = ?", *opts.InCartOf)
	}

	// COUNT(DISTINCT recipes.*) is not valid SQL, so the count runs over
	// ids in its own session
	var total int64
	countQuery := query
	if distinct {
		countQuery = query.Session(&gorm.Session{}).Distinct("recipes.id")
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to count recipes", err)
	}

	if opts.Limit <= 0 {
		opts.Limit = s.cfg.GetInt("pagination.default_limit")
		if opts.Limit <= 0 {
			opts.Limit = 10
		}
	}
	if max := s.cfg.GetInt("pagination.max_limit"); max > 0 && opts.Limit > max {
		opts.Limit = max
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}

	listQuery := query
	if distinct {
		listQuery = listQuery.Distinct("recipes.*")
	}

	var recipes []models.Recipe
	err := listQuery.
		Order("recipes.created_at DESC").
		Limit(opts.Limit).Offset((opts.Page - 1) * opts.Limit).
		Preload("Tags").Preload("Ingredients.Ingredient").Preload("Author").
		Find(&recipes).Error
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("failed to list recipes", err)
	}
	return recipes, total, nil
}
