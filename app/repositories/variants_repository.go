package repositories

import (
	"context"

	"github.com/tiendaluna/go-tienda/app/models"
	"gorm.io/gorm"
)

type VariantRepositoryImpl interface {
	GetByID(ctx context.Context, id string) (*models.ColorVariant, error)
	GetByProductAndID(ctx context.Context, productID, variantID string) (*models.ColorVariant, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ColorVariant, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, variantID string, qty int) (int64, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepositoryImpl {
	return &variantRepository{db}
}

func (r *variantRepository) GetByID(ctx context.Context, id string) (*models.ColorVariant, error) {
	var variant models.ColorVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) GetByProductAndID(ctx context.Context, productID, variantID string) (*models.ColorVariant, error) {
	var variant models.ColorVariant
	if err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", variantID, productID).
		First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// GetByIDForUpdate reads a variant inside the given transaction so checkout
// validation sees live stock, not a stale preload.
func (r *variantRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.ColorVariant, error) {
	var variant models.ColorVariant
	if err := tx.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// DecrementStock issues the guarded conditional update
//
//	UPDATE color_variants SET stock = stock - ? WHERE id = ? AND stock >= ?
//
// and returns the affected row count. Zero rows means a concurrent checkout
// won the race; the caller must abort its transaction.
func (r *variantRepository) DecrementStock(ctx context.Context, tx *gorm.DB, variantID string, qty int) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.ColorVariant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
