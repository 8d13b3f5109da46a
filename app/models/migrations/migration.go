package migrations

import (
	"github.com/tiendaluna/go-tienda/app/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Product{}, &models.ColorVariant{})
}
