package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favorite marks a recipe as favorited by a user, unique per pair
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_recipe"`
	CreatedAt time.Time

	// Relations
	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

// ShoppingCart marks a recipe as selected for the user's shopping list,
// unique per pair
type ShoppingCart struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_recipe"`
	CreatedAt time.Time

	// Relations
	User   User   `gorm:"constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"constraint:OnDelete:CASCADE"`
}

// UserRecipeEdge is the shared shape of the user->recipe relations. The
// favorite and cart services operate on it generically.
type UserRecipeEdge interface {
	Favorite | ShoppingCart
}

// BeforeCreate hooks for UUID generation
func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (s *ShoppingCart) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
