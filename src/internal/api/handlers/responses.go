package handlers

import (
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/casapps/casrecipes/src/internal/database/models"
	"github.com/casapps/casrecipes/src/internal/services"
)

// UserResponse represents a user in API responses
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// SubscriptionResponse extends a user with recipe previews for the
// subscriptions listing
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipePreview `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// RecipePreview is the short recipe projection used in user listings
type RecipePreview struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Slug  string    `json:"slug"`
}

// IngredientResponse represents a catalog ingredient
type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

// RecipeIngredientResponse is an ingredient line inside a recipe
type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeResponse represents a full recipe in API responses. The
// is_favorited and is_in_shopping_cart flags are viewer-relative and
// always false for anonymous requests.
type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Tags             []TagResponse              `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// PagedResponse wraps a paginated result set
type PagedResponse struct {
	Count   int64       `json:"count"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Results interface{} `json:"results"`
}

// viewerID extracts the authenticated user id from context, if any
func viewerID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get("user_id").(uuid.UUID)
	return id, ok
}

// mediaURL turns a stored image reference into a servable URL
func mediaURL(cfg *viper.Viper, ref string) string {
	if ref == "" {
		return ""
	}
	prefix := cfg.GetString("media.url_prefix")
	if prefix == "" {
		prefix = "/media"
	}
	return path.Join(prefix, ref)
}

func toTagResponse(tag models.Tag) TagResponse {
	return TagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color, Slug: tag.Slug}
}

func toIngredientResponse(ingredient models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

func toUserResponse(user *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: isSubscribed,
	}
}

func toRecipePreview(cfg *viper.Viper, recipe models.Recipe) RecipePreview {
	return RecipePreview{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       mediaURL(cfg, recipe.Image),
		CookingTime: recipe.CookingTime,
	}
}

// recipeProjector builds viewer-relative recipe responses
type recipeProjector struct {
	cfg       *viper.Viper
	relations *services.RelationService
	users     *services.UserService
}

func (p recipeProjector) project(c echo.Context, recipe *models.Recipe) RecipeResponse {
	resp := RecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       mediaURL(p.cfg, recipe.Image),
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		CreatedAt:   recipe.CreatedAt,
		Tags:        make([]TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]RecipeIngredientResponse, 0, len(recipe.Ingredients)),
	}
	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, toTagResponse(tag))
	}
	for _, line := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	if viewer, ok := viewerID(c); ok {
		resp.IsFavorited = p.relations.IsFavorited(viewer, recipe.ID)
		resp.IsInShoppingCart = p.relations.IsInCart(viewer, recipe.ID)
		resp.Author = toUserResponse(&recipe.Author, p.users.IsSubscribed(viewer, recipe.AuthorID))
	} else {
		resp.Author = toUserResponse(&recipe.Author, false)
	}
	return resp
}

func (p recipeProjector) projectList(c echo.Context, recipes []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, p.project(c, &recipes[i]))
	}
	return out
}
