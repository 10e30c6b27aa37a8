package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag represents a tag for categorizing recipes
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"size:200;uniqueIndex;not null"`
	Color     string    `gorm:"size:7;uniqueIndex;not null"`
	Slug      string    `gorm:"size:200;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Relations
	Recipes []Recipe `gorm:"many2many:recipe_tags;"`
}

// RecipeTag represents the many-to-many relationship between recipes and tags
type RecipeTag struct {
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time

	// Relations
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE"`
	Tag    Tag    `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate hooks
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
