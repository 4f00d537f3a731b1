package repository

import (
	"context"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Create(ctx context.Context, line *model.CartLine) error
	FindByOwnerAndProduct(ctx context.Context, ownerID, productID uuid.UUID) (*model.CartLine, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.CartLine, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwnerAndProducts(ctx context.Context, ownerID uuid.UUID, productIDs []uuid.UUID) (int64, error)
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepository {
	return &cartRepo{db}
}

func (r *cartRepo) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepo{tx}
}

func (r *cartRepo) Create(ctx context.Context, line *model.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *cartRepo) FindByOwnerAndProduct(ctx context.Context, ownerID, productID uuid.UUID) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByOwner returns the owner's lines with product and seller preloaded
func (r *cartRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Owner", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.CartLine{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *cartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.CartLine{}, "id = ?", id).Error
}

func (r *cartRepo) DeleteByOwnerAndProducts(ctx context.Context, ownerID uuid.UUID, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("owner_id = ? AND product_id IN ?", ownerID, productIDs).
		Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}

func (r *cartRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&model.CartLine{}).Error
}

func (r *cartRepo) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.CartLine{}).Error
}
