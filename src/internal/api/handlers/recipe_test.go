package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

type handlerFixture struct {
	e          *echo.Echo
	db         *gorm.DB
	cfg        *viper.Viper
	user       *models.User
	tag        models.Tag
	ingredient models.Ingredient
}

func setupHandlerFixture(t *testing.T) *handlerFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.GetAllModels()...))

	cfg := viper.New()
	cfg.Set("media.root", t.TempDir())

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	f := &handlerFixture{
		e:    e,
		db:   db,
		cfg:  cfg,
		user: &models.User{Username: "chef", Email: "chef@example.com", PasswordHash: "x"},
	}
	require.NoError(t, db.Create(f.user).Error)

	f.tag = models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"}
	require.NoError(t, db.Create(&f.tag).Error)

	f.ingredient = models.Ingredient{Name: "Salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&f.ingredient).Error)

	return f
}

// request builds an echo context with an optional JSON body and viewer
func (f *handlerFixture) request(method, target, body string, viewer *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if viewer != nil {
		c.Set("user_id", *viewer)
	}
	return c, rec
}

func (f *handlerFixture) recipePayload(name string) string {
	image := base64.StdEncoding.EncodeToString([]byte("image bytes"))
	return fmt.Sprintf(`{
		"name": %q,
		"text": "Cook it well.",
		"image": %q,
		"cooking_time": 25,
		"tags": [%q],
		"ingredients": [{"id": %q, "amount": 10}]
	}`, name, image, f.tag.ID, f.ingredient.ID)
}

func TestRecipeHandlerFlow(t *testing.T) {
	f := setupHandlerFixture(t)
	handler := NewRecipeHandler(f.db, f.cfg)

	var created RecipeResponse

	t.Run("Create", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/api/v1/recipes", f.recipePayload("Stew"), &f.user.ID)
		require.NoError(t, handler.Create(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, "Stew", created.Name)
		assert.Equal(t, "chef", created.Author.Username)
		assert.True(t, strings.HasPrefix(created.Image, "/media/recipes/"))
		require.Len(t, created.Ingredients, 1)
		assert.Equal(t, 10, created.Ingredients[0].Amount)
		assert.False(t, created.IsFavorited)
	})

	t.Run("CreateRequiresAuth", func(t *testing.T) {
		c, _ := f.request(http.MethodPost, "/api/v1/recipes", f.recipePayload("Other"), nil)
		err := handler.Create(c)
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("Favorite", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/", "", &f.user.ID)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		require.NoError(t, handler.Favorite(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("DoubleFavoriteConflicts", func(t *testing.T) {
		c, _ := f.request(http.MethodPost, "/", "", &f.user.ID)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		err := handler.Favorite(c)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("GetReflectsViewerFlags", func(t *testing.T) {
		c, rec := f.request(http.MethodGet, "/", "", &f.user.ID)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		require.NoError(t, handler.Get(c))

		var got RecipeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.IsFavorited)
		assert.False(t, got.IsInShoppingCart)
	})

	t.Run("AnonymousFlagsAreFalse", func(t *testing.T) {
		c, rec := f.request(http.MethodGet, "/", "", nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		require.NoError(t, handler.Get(c))

		var got RecipeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.False(t, got.IsFavorited)
	})

	t.Run("DownloadShoppingCart", func(t *testing.T) {
		c, _ := f.request(http.MethodPost, "/", "", &f.user.ID)
		c.SetParamNames("id")
		c.SetParamValues(created.ID.String())
		require.NoError(t, handler.AddToCart(c))

		c2, rec := f.request(http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", &f.user.ID)
		require.NoError(t, handler.DownloadShoppingCart(c2))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "shopping_list.txt")
		assert.Equal(t, "Salt (g) - 10", rec.Body.String())
	})

	t.Run("List", func(t *testing.T) {
		c, rec := f.request(http.MethodGet, "/api/v1/recipes?tags=dinner", "", nil)
		require.NoError(t, handler.List(c))

		var page PagedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.EqualValues(t, 1, page.Count)
	})
}
