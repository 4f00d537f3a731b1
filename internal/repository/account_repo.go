package repository

import (
	"context"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	WithTx(tx *gorm.DB) AccountRepository
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	Create(ctx context.Context, account *model.Account) error
	Update(ctx context.Context, account *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateTokenVersion(ctx context.Context, id uuid.UUID, version string) error
	FindByRole(ctx context.Context, role model.Role) ([]model.Account, error)
}

type accountRepo struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db}
}

func (r *accountRepo) WithTx(tx *gorm.DB) AccountRepository {
	return &accountRepo{tx}
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepo) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Account{}, "id = ?", id).Error
}

func (r *accountRepo) UpdateTokenVersion(ctx context.Context, id uuid.UUID, version string) error {
	return r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Update("token_version", version).Error
}

func (r *accountRepo) FindByRole(ctx context.Context, role model.Role) ([]model.Account, error) {
	var accounts []model.Account
	err := r.db.WithContext(ctx).Where("role = ?", role).Find(&accounts).Error
	return accounts, err
}
