package repository

import (
	"context"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *model.Order) error
	CreateBatch(ctx context.Context, orders []*model.Order) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Order, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error)
	FindByIDsAndOwner(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]model.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepo{tx}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) CreateBatch(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&orders).Error
}

func (r *orderRepo) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByIDsAndOwner(ctx context.Context, ids []uuid.UUID, ownerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	if len(ids) == 0 {
		return orders, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ? AND owner_id = ?", ids, ownerID).Order("product_name ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Order{}, "id = ?", id).Error
}

func (r *orderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&n).Error
	return n, err
}
