package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient represents reference data for a single ingredient. The same
// name may recur with a different measurement unit; the pair is unique.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Name            string    `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit"`
	MeasurementUnit string    `gorm:"size:200;not null;uniqueIndex:idx_ingredients_name_unit"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
