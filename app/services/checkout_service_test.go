package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tiendaluna/go-tienda/app/models"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ColorVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newFileTestDB backs the DB with a temp file so concurrent writers serialize
// on the sqlite lock instead of failing on the shared-cache page lock.
func newFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "checkout.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.ColorVariant{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVariant(t *testing.T, db *gorm.DB, name, price string, stock int) (*models.Product, *models.ColorVariant) {
	t.Helper()
	product := &models.Product{
		ID:             uuid.New().String(),
		Name:           name,
		Slug:           uuid.NewString(),
		Description:    "descripción de prueba",
		Price:          decimal.RequireFromString(price),
		Category:       models.CategoryLenceria,
		PrincipalColor: models.ColorRed,
		Variants: []models.ColorVariant{
			{Color: models.ColorRed, Image: "/media/productos/rojo.jpg", Stock: stock},
		},
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product, &product.Variants[0]
}

func variantStock(t *testing.T, db *gorm.DB, variantID string) int {
	t.Helper()
	var variant models.ColorVariant
	if err := db.First(&variant, "id = ?", variantID).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	return variant.Stock
}

func TestProcessPaymentSuccess(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	product, variant := seedVariant(t, db, "Vestido rojo", "49.90", 5)

	cart := models.NewCart()
	cart.Add(product, variant, 3)

	if err := svc.ProcessPayment(context.Background(), cart); err != nil {
		t.Fatalf("expected checkout to succeed, got %v", err)
	}
	if got := variantStock(t, db, variant.ID); got != 2 {
		t.Fatalf("expected stock 2 after checkout, got %d", got)
	}
}

func TestProcessPaymentInsufficientStockKeepsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	product, variant := seedVariant(t, db, "Vestido rojo", "49.90", 2)

	cart := models.NewCart()
	cart.Add(product, variant, 3)

	err := svc.ProcessPayment(context.Background(), cart)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected error to wrap ErrInsufficientStock")
	}
	if len(stockErr.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(stockErr.Violations))
	}
	v := stockErr.Violations[0]
	if v.Available != 2 || v.Requested != 3 {
		t.Fatalf("unexpected violation: %+v", v)
	}
	if got := variantStock(t, db, variant.ID); got != 2 {
		t.Fatalf("expected stock untouched at 2, got %d", got)
	}
}

func TestProcessPaymentAllOrNothing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	productA, variantA := seedVariant(t, db, "Malla negra", "89.00", 10)
	productB, variantB := seedVariant(t, db, "Body de encaje", "59.00", 1)

	cart := models.NewCart()
	cart.Add(productA, variantA, 2)
	cart.Add(productB, variantB, 3)

	err := svc.ProcessPayment(context.Background(), cart)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(stockErr.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(stockErr.Violations))
	}
	if stockErr.Violations[0].VariantID != variantB.ID {
		t.Fatalf("expected violation on variant %s, got %s", variantB.ID, stockErr.Violations[0].VariantID)
	}

	// Neither line may have been decremented.
	if got := variantStock(t, db, variantA.ID); got != 10 {
		t.Fatalf("expected variant A stock untouched at 10, got %d", got)
	}
	if got := variantStock(t, db, variantB.ID); got != 1 {
		t.Fatalf("expected variant B stock untouched at 1, got %d", got)
	}
}

func TestProcessPaymentCollectsEveryViolation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	productA, variantA := seedVariant(t, db, "Malla negra", "89.00", 1)
	productB, variantB := seedVariant(t, db, "Body de encaje", "59.00", 0)

	cart := models.NewCart()
	cart.Add(productA, variantA, 2)
	cart.Add(productB, variantB, 1)

	err := svc.ProcessPayment(context.Background(), cart)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if len(stockErr.Violations) != 2 {
		t.Fatalf("expected both violations reported, got %d", len(stockErr.Violations))
	}
	if got := variantStock(t, db, variantA.ID); got != 1 {
		t.Fatalf("expected variant A stock untouched at 1, got %d", got)
	}
	if got := variantStock(t, db, variantB.ID); got != 0 {
		t.Fatalf("expected variant B stock untouched at 0, got %d", got)
	}
}

func TestProcessPaymentMissingVariantIsViolation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	product, variant := seedVariant(t, db, "Vestido rojo", "49.90", 5)

	cart := models.NewCart()
	cart.Add(product, variant, 1)
	if err := db.Where("id = ?", variant.ID).Delete(&models.ColorVariant{}).Error; err != nil {
		t.Fatalf("delete variant: %v", err)
	}

	err := svc.ProcessPayment(context.Background(), cart)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Violations[0].Available != 0 {
		t.Fatalf("expected available 0 for vanished variant, got %d", stockErr.Violations[0].Available)
	}
}

func TestProcessPaymentEmptyCart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	if err := svc.ProcessPayment(context.Background(), models.NewCart()); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}
}

func TestProcessPaymentConcurrentNeverOversells(t *testing.T) {
	db := newFileTestDB(t)
	svc := NewCheckoutService(db, repositories.NewVariantRepository(db))

	product, variant := seedVariant(t, db, "Vestido rojo", "49.90", 5)

	const attempts = 8
	const qtyPerAttempt = 2

	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart := models.NewCart()
			cart.Add(product, variant, qtyPerAttempt)
			results[i] = svc.ProcessPayment(context.Background(), cart)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}

	// At most floor(5/2) = 2 attempts may win; stock never goes negative.
	if successes > 2 {
		t.Fatalf("oversold: %d successful checkouts for stock 5 at qty 2", successes)
	}
	got := variantStock(t, db, variant.ID)
	if got < 0 {
		t.Fatalf("stock went negative: %d", got)
	}
	if got != 5-successes*qtyPerAttempt {
		t.Fatalf("stock %d inconsistent with %d successful checkouts", got, successes)
	}
}
