package service

import (
	"context"
	"errors"
	"strings"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/storage"
	"go-storefront/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=2,max=50"`
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	Password        *string `json:"password" validate:"omitempty,min=6,max=72"`
	CurrentPassword string  `json:"current_password"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type AccountService interface {
	Profile(ctx context.Context, id uuid.UUID) (*model.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*model.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID, req *DeleteAccountRequest) error
}

type accountService struct {
	db          *gorm.DB
	accountRepo repository.AccountRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	images      storage.ImageStore
	log         *zap.Logger
}

func NewAccountService(
	db *gorm.DB,
	accountRepo repository.AccountRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	images storage.ImageStore,
	log *zap.Logger,
) AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &accountService{
		db:          db,
		accountRepo: accountRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		images:      images,
		log:         log.Named("account"),
	}
}

func (s *accountService) Profile(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, persistence("failed to load account", err)
	}
	return account, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*model.Account, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}
	if req.Name == nil && req.Email == nil && req.Password == nil {
		return nil, invalid("provide a name, email or password to update")
	}

	account, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Email != nil {
		email := *req.Email
		if email != account.Email {
			if other, err := s.accountRepo.FindByEmail(ctx, email); err == nil && other.ID != account.ID {
				return nil, ErrEmailExists
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, persistence("failed to check email", err)
			}
			account.Email = email
		}
	}
	if req.Password != nil {
		if !account.CheckPassword(req.CurrentPassword) {
			return nil, ErrWrongPassword
		}
		if err := account.SetPassword(*req.Password); err != nil {
			return nil, persistence("failed to hash password", err)
		}
		// sessions issued under the old password end here
		account.TokenVersion = uuid.NewString()
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, persistence("failed to update account", err)
	}
	return account, nil
}

// DeleteAccount soft-deletes the account and its cart. An admin's products go
// with it; orders stay as purchase history.
func (s *accountService) DeleteAccount(ctx context.Context, id uuid.UUID, req *DeleteAccountRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return invalid("%s", validator.Describe(errs))
	}

	var images []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		accounts := s.accountRepo.WithTx(tx)
		account, err := accounts.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return persistence("failed to load account", err)
		}
		if !account.CheckPassword(req.Password) {
			return ErrWrongPassword
		}

		carts := s.cartRepo.WithTx(tx)
		if err := carts.DeleteByOwner(ctx, account.ID); err != nil {
			return persistence("failed to clear cart", err)
		}

		if account.Role == model.RoleAdmin {
			products := s.productRepo.WithTx(tx)
			owned, err := products.FindByOwner(ctx, account.ID)
			if err != nil {
				return persistence("failed to load products", err)
			}
			for i := range owned {
				if err := products.Delete(ctx, &owned[i]); err != nil {
					return persistence("failed to delete product", err)
				}
				if err := carts.DeleteByProduct(ctx, owned[i].ID); err != nil {
					return persistence("failed to clear carts", err)
				}
				if owned[i].ImagePath != "" {
					images = append(images, owned[i].ImagePath)
				}
			}
		}

		if err := accounts.UpdateTokenVersion(ctx, account.ID, uuid.NewString()); err != nil {
			return persistence("failed to end session", err)
		}
		if err := accounts.Delete(ctx, account.ID); err != nil {
			return persistence("failed to delete account", err)
		}
		return nil
	})
	if err != nil {
		return txError(err)
	}

	log := logger.FromContextOr(ctx, s.log)
	if s.images != nil {
		for _, path := range images {
			if err := s.images.Remove(path); err != nil {
				log.Warn("remove image", zap.String("path", path), zap.Error(err))
			}
		}
	}
	log.Info("account deleted", zap.String("account_id", id.String()), zap.Int("products_removed", len(images)))
	return nil
}
