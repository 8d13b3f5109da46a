package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ColorVariant is one color option of a product with its own stock and image.
// Stock never goes negative: every decrement happens through the guarded
// conditional update in the variant repository.
type ColorVariant struct {
	ID        string   `gorm:"size:36;not null;uniqueIndex;primary_key"`
	ProductID string   `gorm:"size:36;index;not null"`
	Product   *Product `gorm:"foreignKey:ProductID"`
	Color     string   `gorm:"size:50;not null"`
	Image     string   `gorm:"size:255;not null"`
	Stock     int      `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (v *ColorVariant) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}
