package repository

import (
	"context"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error)
	FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, product *model.Product) error
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// WithTx binds the repository to a running transaction
func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

// Sellers stay visible on their products even after the account is removed
func preloadOwner(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := preloadOwner(r.db.WithContext(ctx)).Order("created_at DESC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := preloadOwner(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the row (SELECT ... FOR UPDATE); call it inside a transaction
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDUnscoped also returns soft-deleted products
func (r *productRepo) FindByIDUnscoped(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Unscoped().First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := preloadOwner(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("owner_id = ? AND name = ?", ownerID, name).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Delete(product).Error
}

// DecrementStock subtracts quantity only when enough stock is left.
// It reports false when no live row satisfied the condition.
func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_by": updatedBy,
		})
	return res.RowsAffected == 1, res.Error
}

// IncrementStock adds quantity back, soft-deleted products included
func (r *productRepo) IncrementStock(ctx context.Context, id uuid.UUID, quantity int, updatedBy string) (bool, error) {
	res := r.db.WithContext(ctx).Unscoped().Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", quantity),
			"updated_by": updatedBy,
		})
	return res.RowsAffected == 1, res.Error
}
