package seeders

import (
	"github.com/tiendaluna/go-tienda/app/db/fakers"
	"gorm.io/gorm"
)

const demoProductCount = 12

func DBSeed(db *gorm.DB) error {
	for i := 0; i < demoProductCount; i++ {
		if err := db.Create(fakers.ProductFaker()).Error; err != nil {
			return err
		}
	}
	return nil
}
