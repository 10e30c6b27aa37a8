package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe represents a published recipe. An author cannot publish two
// recipes with the same name. Deleting a recipe cascades to its join rows.
type Recipe struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_recipes_name_author"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipes_name_author"`
	Text        string    `gorm:"type:text;not null"`
	Image       string    `gorm:"size:255"`
	CookingTime int       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relations
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
}

// RecipeIngredient joins a recipe to an ingredient with an amount. An
// ingredient appears at most once per recipe.
type RecipeIngredient struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	RecipeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int       `gorm:"not null"`
	CreatedAt    time.Time

	// Relations
	Recipe     Recipe     `gorm:"constraint:OnDelete:CASCADE"`
	Ingredient Ingredient `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeCreate hooks
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
