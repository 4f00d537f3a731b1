package service

import (
	"context"
	"errors"

	"go-storefront/internal/model"
	"go-storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartService keeps pending selections. It checks stock but never changes it.
type CartService interface {
	Add(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*model.CartLine, error)
	Update(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*model.CartLine, error)
	Remove(ctx context.Context, ownerID, productID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) (*model.CartResponse, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartService) Add(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. One line per product
	if _, err := s.cartRepo.FindByOwnerAndProduct(ctx, ownerID, productID); err == nil {
		return nil, ErrDuplicateCartLine
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistence("failed to read cart", err)
	}

	// 2. Check stock
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock <= 0 || quantity > product.Stock {
		return nil, ErrStockUnavailable
	}

	line := &model.CartLine{OwnerID: ownerID, ProductID: productID, Quantity: quantity}
	if err := s.cartRepo.Create(ctx, line); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateCartLine
		}
		return nil, persistence("failed to add to cart", err)
	}
	line.Product = product
	return line, nil
}

func (s *cartService) Update(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (*model.CartLine, error) {
	// Zero is not a removal; use Remove
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	line, err := s.cartRepo.FindByOwnerAndProduct(ctx, ownerID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartLineNotFound
	}
	if err != nil {
		return nil, persistence("failed to read cart", err)
	}

	if product.Stock <= 0 || quantity > product.Stock {
		return nil, ErrStockUnavailable
	}

	if err := s.cartRepo.UpdateQuantity(ctx, line.ID, quantity); err != nil {
		return nil, persistence("failed to update cart", err)
	}
	line.Quantity = quantity
	line.Product = product
	return line, nil
}

func (s *cartService) Remove(ctx context.Context, ownerID, productID uuid.UUID) error {
	line, err := s.cartRepo.FindByOwnerAndProduct(ctx, ownerID, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartLineNotFound
	}
	if err != nil {
		return persistence("failed to read cart", err)
	}
	if err := s.cartRepo.Delete(ctx, line.ID); err != nil {
		return persistence("failed to remove from cart", err)
	}
	return nil
}

func (s *cartService) List(ctx context.Context, ownerID uuid.UUID) (*model.CartResponse, error) {
	lines, err := s.cartRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistence("failed to read cart", err)
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}
	resp := model.NewCartResponse(lines)
	return &resp, nil
}

func (s *cartService) loadProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistence("failed to load product", err)
	}
	return product, nil
}
