package fakers

import (
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/tiendaluna/go-tienda/app/models"
)

var variantImagePaths = []string{
	"/public/images/productos/ss.jpg",
	"/public/images/productos/ss1.jpg",
	"/public/images/productos/ss2.jpg",
}

func ProductFaker() *models.Product {
	name := faker.Word() + " " + faker.Word()
	productID := uuid.New().String()

	numVariants := rand.Intn(3) + 1
	variants := make([]models.ColorVariant, numVariants)
	for i := 0; i < numVariants; i++ {
		variants[i] = models.ColorVariant{
			ID:        uuid.New().String(),
			ProductID: productID,
			Color:     models.Colors[rand.Intn(len(models.Colors))],
			Image:     variantImagePaths[rand.Intn(len(variantImagePaths))],
			Stock:     rand.Intn(20) + 1,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}

	return &models.Product{
		ID:             productID,
		Name:           name,
		Slug:           slug.Make(name + "-" + uuid.NewString()[:6]),
		Description:    faker.Paragraph(),
		Price:          decimal.NewFromFloat(float64(rand.Intn(15000)+990) / 100),
		Category:       models.Categories[rand.Intn(len(models.Categories))],
		PrincipalColor: models.Colors[rand.Intn(len(models.Colors))],
		MainImage:      variantImagePaths[rand.Intn(len(variantImagePaths))],
		Variants:       variants,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}
