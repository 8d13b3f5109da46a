package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ColorRed    = "red"
	ColorBlue   = "blue"
	ColorBlack  = "black"
	ColorWhite  = "white"
	ColorPink   = "pink"
	ColorPurple = "purple"
)

const (
	CategoryMallasEnterizas = "mallas_enterizas"
	CategoryLenceria        = "lenceria"
	CategoryDisfrazSexi     = "disfraz_sexi"
)

// Colors lists every color a product or variant may carry, in display order.
var Colors = []string{ColorRed, ColorBlue, ColorBlack, ColorWhite, ColorPink, ColorPurple}

var Categories = []string{CategoryMallasEnterizas, CategoryLenceria, CategoryDisfrazSexi}

type Product struct {
	ID             string          `gorm:"size:36;not null;uniqueIndex;primary_key"`
	Name           string          `gorm:"size:200;not null"`
	Slug           string          `gorm:"size:255;not null;uniqueIndex"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(16,2);not null"`
	Category       string          `gorm:"size:50;not null;default:lenceria"`
	PrincipalColor string          `gorm:"size:50;not null;default:red"`
	MainImage      string          `gorm:"size:255"`
	Variants       []ColorVariant  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TotalStock is derived from the owned variants and never stored on the row.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

func IsValidColor(color string) bool {
	for _, c := range Colors {
		if c == color {
			return true
		}
	}
	return false
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
