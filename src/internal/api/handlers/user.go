package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	"github.com/casapps/casrecipes/src/internal/email"
	"github.com/casapps/casrecipes/src/internal/services"
)

// UserHandler handles user and subscription endpoints
type UserHandler struct {
	users  *services.UserService
	config *viper.Viper
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *gorm.DB, config *viper.Viper) *UserHandler {
	return &UserHandler{
		users:  services.NewUserService(db, config, email.NewNotifier(config)),
		config: config,
	}
}

// List returns a paginated user listing
func (h *UserHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	users, total, err := h.users.ListUsers(page, limit)
	if err != nil {
		return err
	}

	viewer, hasViewer := viewerID(c)
	results := make([]UserResponse, 0, len(users))
	for i := range users {
		subscribed := hasViewer && h.users.IsSubscribed(viewer, users[i].ID)
		results = append(results, toUserResponse(&users[i], subscribed))
	}

	if page <= 0 {
		page = 1
	}
	return c.JSON(http.StatusOK, PagedResponse{
		Count:   total,
		Page:    page,
		Limit:   len(results),
		Results: results,
	})
}

// Get returns a single user profile
func (h *UserHandler) Get(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		return err
	}

	subscribed := false
	if viewer, ok := viewerID(c); ok {
		subscribed = h.users.IsSubscribed(viewer, user.ID)
	}
	return c.JSON(http.StatusOK, toUserResponse(user, subscribed))
}

// Me returns the authenticated user's own profile
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user, false))
}

// Subscribe adds a follow edge from the viewer to the target author
func (h *UserHandler) Subscribe(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.users.Follow(viewer, authorID); err != nil {
		return err
	}

	author, err := h.users.GetUserByID(authorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.subscriptionResponse(c, author, true))
}

// Unsubscribe removes the follow edge
func (h *UserHandler) Unsubscribe(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.users.Unfollow(viewer, authorID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Subscriptions lists the authors the viewer follows, each with recipe
// previews capped by the recipes_limit query parameter
func (h *UserHandler) Subscriptions(c echo.Context) error {
	viewer, ok := viewerID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	authors, total, err := h.users.Subscriptions(viewer, page, limit)
	if err != nil {
		return err
	}

	recipesLimit := 0
	if raw := c.QueryParam("recipes_limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid recipes_limit")
		}
		recipesLimit = parsed
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		results = append(results, h.subscriptionResponseWithLimit(c, &authors[i], true, recipesLimit))
	}

	if page <= 0 {
		page = 1
	}
	return c.JSON(http.StatusOK, PagedResponse{
		Count:   total,
		Page:    page,
		Limit:   len(results),
		Results: results,
	})
}

func (h *UserHandler) subscriptionResponse(c echo.Context, author *models.User, subscribed bool) SubscriptionResponse {
	return h.subscriptionResponseWithLimit(c, author, subscribed, 0)
}

func (h *UserHandler) subscriptionResponseWithLimit(c echo.Context, author *models.User, subscribed bool, recipesLimit int) SubscriptionResponse {
	resp := SubscriptionResponse{
		UserResponse: toUserResponse(author, subscribed),
		Recipes:      []RecipePreview{},
		RecipesCount: h.users.RecipesCount(author.ID),
	}
	recipes, err := h.users.RecentRecipes(author.ID, recipesLimit)
	if err == nil {
		for _, recipe := range recipes {
			resp.Recipes = append(resp.Recipes, toRecipePreview(h.config, recipe))
		}
	}
	return resp
}
