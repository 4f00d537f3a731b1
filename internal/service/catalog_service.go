package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"go-storefront/internal/events"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/storage"
	"go-storefront/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name        string                `json:"name" validate:"required,max=255"`
	Description string                `json:"description" validate:"max=2000"`
	Price       decimal.Decimal       `json:"price"`
	Stock       int                   `json:"stock" validate:"gte=0"`
	Image       *multipart.FileHeader `json:"-"`
}

// UpdateProductRequest changes only the fields that are set
type UpdateProductRequest struct {
	Name        *string               `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string               `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal      `json:"price"`
	Stock       *int                  `json:"stock" validate:"omitempty,gte=0"`
	Image       *multipart.FileHeader `json:"-"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListMovements(ctx context.Context, actor Actor, productID uuid.UUID) ([]model.StockMovement, error)
}

type catalogService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	movementRepo repository.StockMovementRepository
	ledger       *InventoryLedger
	images       storage.ImageStore
	emitter      *Emitter
	log          *zap.Logger
}

func NewCatalogService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	movementRepo repository.StockMovementRepository,
	ledger *InventoryLedger,
	images storage.ImageStore,
	emitter *Emitter,
	log *zap.Logger,
) CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &catalogService{
		db:           db,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		movementRepo: movementRepo,
		ledger:       ledger,
		images:       images,
		emitter:      emitter,
		log:          log.Named("catalog"),
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, actor Actor, req *CreateProductRequest) (*model.Product, error) {
	// 1. Validasi
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}
	if req.Price.IsNegative() {
		return nil, invalid("price must not be negative")
	}

	// 2. Cek duplikasi nama per owner
	if _, err := s.productRepo.FindByOwnerAndName(ctx, actor.ID, req.Name); err == nil {
		return nil, ErrDuplicateProduct
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("failed to check product name", err)
	}

	// 3. Simpan gambar dulu
	imagePath, err := s.saveImage(req.Image)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImagePath:   imagePath,
		OwnerID:     actor.ID,
		Audit:       model.Audit{CreatedBy: actor.ID.String(), UpdatedBy: actor.ID.String()},
	}

	// 4. Insert + initial stock movement
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.WithTx(tx).Create(ctx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateProduct
			}
			return persistence("failed to create product", err)
		}
		return s.ledger.RecordAdjustment(ctx, tx, product.ID, 0, product.Stock, actor.ID.String())
	})
	if err != nil {
		s.removeImage(ctx, imagePath)
		return nil, txError(err)
	}

	owner := &model.Account{BaseModel: model.BaseModel{ID: actor.ID}, Name: actor.Name, Email: actor.Email, Role: model.Role(actor.Role)}
	product.Owner = owner

	s.emitter.emit(ctx, events.ProductCreated, product.ID.String(), events.ProductPayload{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price.StringFixed(2),
		NewStock:  product.Stock,
		Actor:     actor.event(),
		Message:   fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
	})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, invalid("%s", validator.Describe(errs))
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, invalid("price must not be negative")
	}

	newImage, err := s.saveImage(req.Image)
	if err != nil {
		return nil, err
	}

	var oldStock int
	var oldImage string
	var updated *model.Product

	// Transaction block dengan locking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := s.productRepo.WithTx(tx)

		// 1. Cari & lock product
		existing, err := products.FindByIDForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return persistence("failed to load product", err)
		}
		if existing.OwnerID != actor.ID {
			return ErrNotOwner
		}
		oldStock = existing.Stock
		oldImage = existing.ImagePath

		// 2. Nama baru tidak boleh bentrok
		if req.Name != nil && *req.Name != existing.Name {
			if other, err := products.FindByOwnerAndName(ctx, actor.ID, *req.Name); err == nil && other.ID != existing.ID {
				return ErrDuplicateProduct
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return persistence("failed to check product name", err)
			}
			existing.Name = *req.Name
		}

		// 3. Update fields
		if req.Description != nil {
			existing.Description = *req.Description
		}
		if req.Price != nil {
			existing.Price = *req.Price
		}
		if req.Stock != nil {
			existing.Stock = *req.Stock
		}
		if newImage != "" {
			existing.ImagePath = newImage
		}
		existing.UpdatedBy = actor.ID.String()

		if err := products.Update(ctx, existing); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateProduct
			}
			return persistence("failed to update product", err)
		}
		if err := s.ledger.RecordAdjustment(ctx, tx, existing.ID, oldStock, existing.Stock, actor.ID.String()); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		s.removeImage(ctx, newImage)
		return nil, txError(err)
	}
	if newImage != "" && oldImage != "" {
		s.removeImage(ctx, oldImage)
	}

	if reloaded, err := s.productRepo.FindByID(ctx, id); err == nil {
		updated = reloaded
	}

	s.emitter.emit(ctx, events.ProductUpdated, updated.ID.String(), events.ProductPayload{
		ProductID: updated.ID.String(),
		Name:      updated.Name,
		Price:     updated.Price.StringFixed(2),
		OldStock:  oldStock,
		NewStock:  updated.Stock,
		Actor:     actor.event(),
		Message:   fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
	})
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	var deleted *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.WithTx(tx).FindByIDForUpdate(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return persistence("failed to load product", err)
		}
		if product.OwnerID != actor.ID {
			return ErrNotOwner
		}
		if err := s.productRepo.WithTx(tx).Delete(ctx, product); err != nil {
			return persistence("failed to delete product", err)
		}
		// Nobody can buy it anymore
		if err := s.cartRepo.WithTx(tx).DeleteByProduct(ctx, product.ID); err != nil {
			return persistence("failed to clear carts", err)
		}
		deleted = product
		return nil
	})
	if err != nil {
		return txError(err)
	}

	s.removeImage(ctx, deleted.ImagePath)
	s.emitter.emit(ctx, events.ProductDeleted, deleted.ID.String(), events.ProductPayload{
		ProductID: deleted.ID.String(),
		Name:      deleted.Name,
		Price:     deleted.Price.StringFixed(2),
		OldStock:  deleted.Stock,
		Actor:     actor.event(),
		Message:   fmt.Sprintf("%s deleted product '%s'", actor.Name, deleted.Name),
	})
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, persistence("failed to fetch products", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistence("failed to fetch product", err)
	}
	return product, nil
}

// ListMovements returns the stock journal of a product the actor owns
func (s *catalogService) ListMovements(ctx context.Context, actor Actor, productID uuid.UUID) ([]model.StockMovement, error) {
	product, err := s.productRepo.FindByIDUnscoped(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistence("failed to fetch product", err)
	}
	if product.OwnerID != actor.ID {
		return nil, ErrNotOwner
	}
	movements, err := s.movementRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, persistence("failed to fetch stock movements", err)
	}
	return movements, nil
}

func (s *catalogService) saveImage(file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", nil
	}
	if s.images == nil {
		return "", invalid("image uploads are disabled")
	}
	path, err := s.images.Save(file)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return "", invalid("unsupported image type")
	}
	if err != nil {
		return "", persistence("failed to store image", err)
	}
	return path, nil
}

// removeImage is best-effort; failures are only logged
func (s *catalogService) removeImage(ctx context.Context, path string) {
	if path == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(path); err != nil {
		logger.FromContextOr(ctx, s.log).Warn("remove image", zap.String("path", path), zap.Error(err))
	}
}
