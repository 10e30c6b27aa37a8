package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/email"
	"github.com/casapps/casrecipes/src/internal/services"
	"github.com/casapps/casrecipes/src/internal/storage"
)

// RecipeHandler handles recipe endpoints, including the favorite and
// shopping cart sub-resources
type RecipeHandler struct {
	recipes   *services.RecipeService
	relations *services.RelationService
	shopping  *services.ShoppingListService
	images    *storage.ImageStore
	projector recipeProjector
	config    *viper.Viper
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(db *gorm.DB, config *viper.Viper) *RecipeHandler {
	relations := services.NewRelationService(db)
	users := services.NewUserService(db, config, email.NewNotifier(config))
	return &RecipeHandler{
		recipes:   services.NewRecipeService(db, config),
		relations: relations,
		shopping:  services.NewShoppingListService(db),
		images:    storage.NewImageStore(config),
		projector: recipeProjector{cfg: config, relations: relations, users: users},
		config:    config,
	}
}

// IngredientLineRequest is one ingredient line of a recipe payload
type IngredientLineRequest struct {
	ID     uuid.UUID `json:"id" validate:"required"`
	Amount int       `json:"amount" validate:"required"`
}

// RecipeRequest represents a recipe create or update payload. The image is
// an inline base64 payload; on update an empty image keeps the stored one.
type RecipeRequest struct {
	Name        string                  `json:"name" validate:"required"`
	Text        string                  `json:"text" validate:"required"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time" validate:"required"`
	Tags        []uuid.UUID             `json:"tags" validate:"required"`
	Ingredients []IngredientLineRequest `json:"ingredients" validate:"required"`
}

func (h *RecipeHandler) toInput(req RecipeRequest) (services.RecipeInput, error) {
	input := services.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
		Ingredients: make([]services.IngredientLineInput, 0, len(req.Ingredients)),
	}
	for _, line := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, services.IngredientLineInput{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	if req.Image != "" {
		ref, err := h.images.Save(req.Image)
		if err != nil {
			return input, err
		}
		input.Image = ref
	}
	return input, nil
}

// List returns a filtered, paginated recipe listing
func (h *RecipeHandler) List(c echo.Context) error {
	opts := services.ListRecipesOptions{
		TagSlugs: c.QueryParams()["tags"],
	}
	opts.Page, _ = strconv.Atoi(c.QueryParam("page"))
	opts.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if raw := c.QueryParam("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid author id")
		}
		opts.AuthorID = &authorID
	}

	// The favorited and cart filters are viewer-relative; anonymous
	// requests get them ignored rather than rejected
	if viewer, ok := viewerID(c); ok {
		if c.QueryParam("is_favorited") == "1" {
			opts.FavoritedBy = &viewer
		}
		if c.QueryParam("is_in_shopping_cart") == "1" {
			opts.InCartOf = &viewer
		}
	}

	recipes, total, err := h.recipes.ListRecipes(opts)
	if err != nil {
		return err
	}

	if opts.Page <= 0 {
		opts.Page = 1
	}
	return c.JSON(http.StatusOK, PagedResponse{
		Count:   total,
		Page:    opts.Page,
		Limit:   len(recipes),
		Results: h.projector.projectList(c, recipes),
	})
}

// Get returns a single recipe
func (h *RecipeHandler) Get(c echo.Context) error {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe id")
	}
	recipe, err := h.recipes.GetRecipe(recipeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.projector.project(c, recipe))
}

// Create creates a new recipe owned by the viewer
func (h *RecipeHandler) Create(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := h.toInput(req)
	if err != nil {
		return err
	}

	recipe, err := h.recipes.CreateRecipe(viewer, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.projector.project(c, recipe))
}

// Update replaces a recipe's fields and association sets
func (h *RecipeHandler) Update(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe id")
	}

	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input, err := h.toInput(req)
	if err != nil {
		return err
	}

	recipe, err := h.recipes.UpdateRecipe(recipeID, viewer, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.projector.project(c, recipe))
}

// Delete removes a recipe
func (h *RecipeHandler) Delete(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe id")
	}

	if err := h.recipes.DeleteRecipe(recipeID, viewer); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Favorite marks a recipe as favorited by the viewer
func (h *RecipeHandler) Favorite(c echo.Context) error {
	return h.addEdge(c, h.relations.AddFavorite)
}

// Unfavorite removes the viewer's favorite mark
func (h *RecipeHandler) Unfavorite(c echo.Context) error {
	return h.removeEdge(c, h.relations.RemoveFavorite)
}

// AddToCart puts a recipe into the viewer's shopping cart
func (h *RecipeHandler) AddToCart(c echo.Context) error {
	return h.addEdge(c, h.relations.AddToCart)
}

// RemoveFromCart takes a recipe out of the viewer's shopping cart
func (h *RecipeHandler) RemoveFromCart(c echo.Context) error {
	return h.removeEdge(c, h.relations.RemoveFromCart)
}

func (h *RecipeHandler) addEdge(c echo.Context, add func(uuid.UUID, uuid.UUID) error) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe id")
	}

	if err := add(viewer, recipeID); err != nil {
		return err
	}

	recipe, err := h.recipes.GetRecipe(recipeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toRecipePreview(h.config, *recipe))
}

func (h *RecipeHandler) removeEdge(c echo.Context, remove func(uuid.UUID, uuid.UUID) error) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipe id")
	}

	if err := remove(viewer, recipeID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart renders the viewer's aggregated shopping list as a
// plain-text attachment
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	list, err := h.shopping.BuildList(viewer)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", "shopping_list.txt"))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(list))
}
