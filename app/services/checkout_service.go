package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tiendaluna/go-tienda/app/models"
	"github.com/tiendaluna/go-tienda/app/repositories"
	"gorm.io/gorm"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient variant stock")
)

// StockViolation describes one cart line whose requested quantity exceeds the
// live stock at payment time.
type StockViolation struct {
	VariantID   string
	ProductName string
	Color       string
	Available   int
	Requested   int
}

// InsufficientStockError carries every failing line of a checkout attempt, not
// just the first one, so the cart page can point at all of them.
type InsufficientStockError struct {
	Violations []StockViolation
}

func (e *InsufficientStockError) Error() string {
	var parts []string
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (%s): available %d, requested %d", v.ProductName, v.Color, v.Available, v.Requested))
	}
	return fmt.Sprintf("insufficient stock for %d cart line(s): %s", len(e.Violations), strings.Join(parts, "; "))
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

type CheckoutService struct {
	db          *gorm.DB
	variantRepo repositories.VariantRepositoryImpl
}

func NewCheckoutService(db *gorm.DB, variantRepo repositories.VariantRepositoryImpl) *CheckoutService {
	return &CheckoutService{
		db:          db,
		variantRepo: variantRepo,
	}
}

// ProcessPayment settles the whole cart in one transaction with all-or-nothing
// semantics: it first re-reads the live stock of every line and collects every
// violation; only when all lines pass does it issue the conditional decrements.
// A decrement touching zero rows means a concurrent checkout drained the stock
// after validation, and the whole transaction is rolled back.
//
// On success every decrement is committed; on any failure no stock changes and
// the caller keeps the cart untouched so the visitor can adjust and retry.
func (s *CheckoutService) ProcessPayment(ctx context.Context, cart models.Cart) error {
	if cart.IsEmpty() {
		return ErrCartEmpty
	}

	lines := cart.Items()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var violations []StockViolation

		for _, line := range lines {
			variant, err := s.variantRepo.GetByIDForUpdate(ctx, tx, line.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					violations = append(violations, StockViolation{
						VariantID:   line.VariantID,
						ProductName: line.Name,
						Color:       line.Color,
						Available:   0,
						Requested:   line.Qty,
					})
					continue
				}
				return fmt.Errorf("failed to read variant %s: %w", line.VariantID, err)
			}
			if variant.Stock < line.Qty {
				violations = append(violations, StockViolation{
					VariantID:   line.VariantID,
					ProductName: line.Name,
					Color:       line.Color,
					Available:   variant.Stock,
					Requested:   line.Qty,
				})
			}
		}

		if len(violations) > 0 {
			return &InsufficientStockError{Violations: violations}
		}

		for _, line := range lines {
			affected, err := s.variantRepo.DecrementStock(ctx, tx, line.VariantID, line.Qty)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for variant %s: %w", line.VariantID, err)
			}
			if affected == 0 {
				log.Printf("CheckoutService.ProcessPayment: lost stock race on variant %s, rolling back", line.VariantID)
				return &InsufficientStockError{Violations: []StockViolation{{
					VariantID:   line.VariantID,
					ProductName: line.Name,
					Color:       line.Color,
					Requested:   line.Qty,
				}}}
			}
		}

		return nil
	})
}
