package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casrecipes/src/internal/database/models"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
	"github.com/casapps/casrecipes/src/internal/validation"
)

// CatalogService handles tag and ingredient reference data
type CatalogService struct {
	db     *gorm.DB
	limits validation.Limits
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *gorm.DB, cfg *viper.Viper) *CatalogService {
	return &CatalogService{
		db:     db,
		limits: validation.LimitsFromConfig(cfg),
	}
}

// ListTags returns all tags ordered by name
func (s *CatalogService) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to list tags", err)
	}
	return tags, nil
}

// GetTag returns a single tag by id
func (s *CatalogService) GetTag(tagID uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, "id = ?", tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("tag")
		}
		return nil, apperrors.NewDatabaseError("failed to load tag", err)
	}
	return &tag, nil
}

// UpsertTag creates or updates a tag keyed by its name. The color is
// normalized to the canonical 6-digit uppercase hex form before writing.
// Re-importing the same data leaves row counts unchanged.
func (s *CatalogService) UpsertTag(name, color, slug string) (*models.Tag, error) {
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}
	if len(name) > s.limits.NameMax {
		return nil, apperrors.NewValidationError("name", "name is too long")
	}
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, err
	}
	normalized, err := validation.NormalizeHexColor(color)
	if err != nil {
		return nil, err
	}

	var tag models.Tag
	err = s.db.Where("name = ?", name).First(&tag).Error
	switch {
	case err == nil:
		tag.Color = normalized
		tag.Slug = slug
		if err := s.db.Save(&tag).Error; err != nil {
			return nil, apperrors.TranslateDBError(err, "tag color or slug already in use")
		}
		return &tag, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		tag = models.Tag{Name: name, Color: normalized, Slug: slug}
		if err := s.db.Create(&tag).Error; err != nil {
			return nil, apperrors.TranslateDBError(err, "tag already exists")
		}
		return &tag, nil
	default:
		return nil, apperrors.NewDatabaseError("failed to upsert tag", err)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListIngredients returns ingredients, optionally restricted to a name
// prefix, ordered by name. The prefix is matched literally, LIKE wildcards
// carry no meaning.
func (s *CatalogService) ListIngredients(namePrefix string) ([]models.Ingredient, error) {
	query := s.db.Order("name ASC")
	if namePrefix != "" {
		query = query.Where(`name LIKE ? ESCAPE '\'`, likeEscaper.Replace(namePrefix)+"%")
	}
	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, apperrors.NewDatabaseError("failed to list ingredients", err)
	}
	return ingredients, nil
}

// GetIngredient returns a single ingredient by id
func (s *CatalogService) GetIngredient(ingredientID uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.First(&ingredient, "id = ?", ingredientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("ingredient")
		}
		return nil, apperrors.NewDatabaseError("failed to load ingredient", err)
	}
	return &ingredient, nil
}

// UpsertIngredient creates an ingredient keyed by its natural key
// (name, measurement unit). Existing rows are left untouched, so repeated
// imports are idempotent.
func (s *CatalogService) UpsertIngredient(name, measurementUnit string) (*models.Ingredient, error) {
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}
	if measurementUnit == "" {
		return nil, apperrors.NewValidationError("measurement_unit", "must not be empty")
	}

	var ingredient models.Ingredient
	err := s.db.Where("name = ? AND measurement_unit = ?", name, measurementUnit).
		FirstOrCreate(&ingredient, models.Ingredient{
			Name:            name,
			MeasurementUnit: measurementUnit,
		}).Error
	if err != nil {
		return nil, apperrors.TranslateDBError(err, "ingredient already exists")
	}
	return &ingredient, nil
}
