package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user account
type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	Username         string    `gorm:"uniqueIndex;size:150;not null"`
	Email            string    `gorm:"uniqueIndex;size:254;not null"`
	FirstName        string    `gorm:"size:150"`
	LastName         string    `gorm:"size:150"`
	PasswordHash     string    `gorm:"size:255;not null" json:"-"`
	IsAdmin          bool      `gorm:"default:false"`
	IsActive         bool      `gorm:"default:true"`
	TwoFactorEnabled bool      `gorm:"default:false"`
	TwoFactorSecret  string    `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Relations
	Recipes   []Recipe       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Followers []Follow       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Following []Follow       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Favorites []Favorite     `gorm:"constraint:OnDelete:CASCADE"`
	Cart      []ShoppingCart `gorm:"constraint:OnDelete:CASCADE"`
}

// Follow represents a user subscribing to an author's recipes
type Follow struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_user_author"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_user_author"`
	CreatedAt time.Time

	// Relations
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate hooks for UUID generation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	// Self-follow is forbidden at the model level too
	if f.UserID == f.AuthorID {
		return gorm.ErrInvalidData
	}
	return nil
}

// FullName returns the display name of the user
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Username
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
