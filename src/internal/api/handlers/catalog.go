package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/services"
)

// CatalogHandler serves the tag and ingredient reference data. Both
// collections are read-only over the API; they are maintained via import.
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(db *gorm.DB, config *viper.Viper) *CatalogHandler {
	return &CatalogHandler{catalog: services.NewCatalogService(db, config)}
}

// ListTags returns all tags
func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.catalog.ListTags()
	if err != nil {
		return err
	}
	results := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		results = append(results, toTagResponse(tag))
	}
	return c.JSON(http.StatusOK, results)
}

// GetTag returns a single tag
func (h *CatalogHandler) GetTag(c echo.Context) error {
	tagID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tag id")
	}
	tag, err := h.catalog.GetTag(tagID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTagResponse(*tag))
}

// ListIngredients returns ingredients, filterable by name prefix
func (h *CatalogHandler) ListIngredients(c echo.Context) error {
	ingredients, err := h.catalog.ListIngredients(c.QueryParam("name"))
	if err != nil {
		return err
	}
	results := make([]IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		results = append(results, toIngredientResponse(ingredient))
	}
	return c.JSON(http.StatusOK, results)
}

// GetIngredient returns a single ingredient
func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	ingredientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ingredient id")
	}
	ingredient, err := h.catalog.GetIngredient(ingredientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toIngredientResponse(*ingredient))
}
