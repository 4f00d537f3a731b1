package service

import (
	"context"
	"errors"

	"go-storefront/internal/metrics"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRef ties a stock change to the order and account that caused it
type MovementRef struct {
	OrderID *uuid.UUID
	ActorID string
}

// InventoryLedger is the only code path that changes Product.Stock.
// Every method runs inside the caller's transaction.
type InventoryLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	metrics   *metrics.Metrics
}

func NewInventoryLedger(products repository.ProductRepository, movements repository.StockMovementRepository, m *metrics.Metrics) *InventoryLedger {
	return &InventoryLedger{products: products, movements: movements, metrics: m}
}

// Reserve debits quantity from the product and returns the product as it is
// after the debit. Concurrent reservations serialize on the product row.
func (l *InventoryLedger) Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int, ref MovementRef) (*model.Product, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	products := l.products.WithTx(tx)

	ok, err := products.DecrementStock(ctx, productID, quantity, ref.ActorID)
	if err != nil {
		return nil, persistence("failed to reserve stock", err)
	}

	product, err := products.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistence("failed to load product", err)
	}

	if !ok {
		if product.Stock <= 0 {
			l.metrics.StockRejected("out_of_stock")
			return nil, ErrOutOfStock
		}
		l.metrics.StockRejected("insufficient_stock")
		return nil, ErrInsufficientStock
	}

	if err := l.journal(ctx, tx, product.ID, model.MovementOut, model.ReasonOrder, quantity, product.Stock, ref); err != nil {
		return nil, err
	}
	return product, nil
}

// Release credits quantity back, soft-deleted products included, and returns the new stock
func (l *InventoryLedger) Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, quantity int, ref MovementRef) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	products := l.products.WithTx(tx)

	ok, err := products.IncrementStock(ctx, productID, quantity, ref.ActorID)
	if err != nil {
		return 0, persistence("failed to release stock", err)
	}
	if !ok {
		return 0, ErrProductNotFound
	}

	product, err := products.FindByIDUnscoped(ctx, productID)
	if err != nil {
		return 0, persistence("failed to load product", err)
	}
	if err := l.journal(ctx, tx, productID, model.MovementIn, model.ReasonCancel, quantity, product.Stock, ref); err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// RecordAdjustment journals a direct stock correction made by the catalog
func (l *InventoryLedger) RecordAdjustment(ctx context.Context, tx *gorm.DB, productID uuid.UUID, oldStock, newStock int, actorID string) error {
	delta := newStock - oldStock
	switch {
	case delta > 0:
		return l.journal(ctx, tx, productID, model.MovementIn, model.ReasonAdjustment, delta, newStock, MovementRef{ActorID: actorID})
	case delta < 0:
		return l.journal(ctx, tx, productID, model.MovementOut, model.ReasonAdjustment, -delta, newStock, MovementRef{ActorID: actorID})
	}
	return nil
}

func (l *InventoryLedger) journal(ctx context.Context, tx *gorm.DB, productID uuid.UUID, typ model.MovementType, reason model.MovementReason, quantity, stockAfter int, ref MovementRef) error {
	movement := &model.StockMovement{
		ProductID:  productID,
		Type:       typ,
		Reason:     reason,
		Quantity:   quantity,
		StockAfter: stockAfter,
		OrderID:    ref.OrderID,
		ActorID:    ref.ActorID,
	}
	if err := l.movements.WithTx(tx).Create(ctx, movement); err != nil {
		return persistence("failed to record stock movement", err)
	}
	return nil
}
