package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiendaluna/go-tienda/app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:variants_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ColorVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New().String(),
		Name:           "Vestido rojo",
		Slug:           uuid.NewString(),
		Price:          decimal.RequireFromString("49.90"),
		Category:       models.CategoryLenceria,
		PrincipalColor: models.ColorRed,
		Variants: []models.ColorVariant{
			{Color: models.ColorRed, Image: "/media/productos/rojo.jpg", Stock: stock},
		},
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestDecrementStockGuardsAgainstOverdraw(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewVariantRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, 5)
	variantID := product.Variants[0].ID

	affected, err := repo.DecrementStock(ctx, db, variantID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 affected row, got %d", affected)
	}

	// 2 left; asking for 3 must touch nothing.
	affected, err = repo.DecrementStock(ctx, db, variantID, 3)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected guarded decrement to affect 0 rows, got %d", affected)
	}

	variant, err := repo.GetByID(ctx, variantID)
	if err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if variant.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", variant.Stock)
	}
}

func TestDecrementStockExactlyToZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewVariantRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, 4)
	variantID := product.Variants[0].ID

	affected, err := repo.DecrementStock(ctx, db, variantID, 4)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected decrement to zero to succeed, got %d affected rows", affected)
	}

	variant, err := repo.GetByID(ctx, variantID)
	if err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if variant.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", variant.Stock)
	}
}

func TestGetByProductAndIDRejectsForeignVariant(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewVariantRepository(db)
	ctx := context.Background()

	productA := seedProduct(t, db, 2)
	productB := seedProduct(t, db, 2)

	if _, err := repo.GetByProductAndID(ctx, productA.ID, productB.Variants[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for variant of another product, got %v", err)
	}

	variant, err := repo.GetByProductAndID(ctx, productA.ID, productA.Variants[0].ID)
	if err != nil {
		t.Fatalf("expected lookup to succeed: %v", err)
	}
	if variant.ID != productA.Variants[0].ID {
		t.Fatalf("unexpected variant %s", variant.ID)
	}
}

func TestProductDeleteCascadesToVariants(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	productRepo := NewProductRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, 3)
	if err := productRepo.Delete(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	var count int64
	if err := db.Model(&models.ColorVariant{}).Where("product_id = ?", product.ID).Count(&count).Error; err != nil {
		t.Fatalf("count variants: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected variants deleted with product, found %d", count)
	}
}
