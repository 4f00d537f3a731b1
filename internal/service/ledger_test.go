package service

import (
	"context"
	"testing"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedgerReserve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		stock     int
		quantity  int
		wantErr   error
		wantStock int
	}{
		{"debits stock", 5, 3, nil, 2},
		{"takes the last units", 2, 2, nil, 0},
		{"zero quantity", 5, 0, ErrInvalidQuantity, 5},
		{"negative quantity", 5, -1, ErrInvalidQuantity, 5},
		{"more than available", 2, 3, ErrInsufficientStock, 2},
		{"nothing left", 0, 1, ErrOutOfStock, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
			p := f.product(t, admin, "Widget", tt.stock, "10.00")

			var reserved *model.Product
			err := f.db.Transaction(func(tx *gorm.DB) error {
				var err error
				reserved, err = f.ledger.Reserve(ctx, tx, p.ID, tt.quantity, MovementRef{ActorID: "buyer"})
				return err
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStock, reserved.Stock)
				assert.Equal(t, "Seller", reserved.SellerName())
			}
			assert.Equal(t, tt.wantStock, f.stock(t, p))
		})
	}
}

func TestLedgerReserveJournalsMovement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")
	orderID := uuid.New()

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.ledger.Reserve(ctx, tx, p.ID, 2, MovementRef{OrderID: &orderID, ActorID: "buyer"})
		return err
	}))

	movements, err := f.movements.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementOut, movements[0].Type)
	assert.Equal(t, model.ReasonOrder, movements[0].Reason)
	assert.Equal(t, 2, movements[0].Quantity)
	assert.Equal(t, 3, movements[0].StockAfter)
	require.NotNil(t, movements[0].OrderID)
	assert.Equal(t, orderID, *movements[0].OrderID)
}

func TestLedgerReserveUnknownProduct(t *testing.T) {
	f := newFixture(t)
	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.ledger.Reserve(context.Background(), tx, uuid.New(), 1, MovementRef{})
		return err
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestLedgerReserveSkipsDeletedProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")
	require.NoError(t, f.products.Delete(ctx, p))

	err := f.db.Transaction(func(tx *gorm.DB) error {
		_, err := f.ledger.Reserve(ctx, tx, p.ID, 1, MovementRef{})
		return err
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, f.stock(t, p))
}

func TestLedgerReleaseCreditsDeletedProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	p := f.product(t, admin, "Widget", 1, "10.00")
	require.NoError(t, f.products.Delete(ctx, p))

	var after int
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		after, err = f.ledger.Release(ctx, tx, p.ID, 4, MovementRef{ActorID: "buyer"})
		return err
	}))
	assert.Equal(t, 5, after)
	assert.Equal(t, 5, f.stock(t, p))

	movements, err := f.movements.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementIn, movements[0].Type)
	assert.Equal(t, model.ReasonCancel, movements[0].Reason)
}

func TestLedgerRecordAdjustment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")

	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		if err := f.ledger.RecordAdjustment(ctx, tx, p.ID, 5, 8, "admin"); err != nil {
			return err
		}
		if err := f.ledger.RecordAdjustment(ctx, tx, p.ID, 8, 8, "admin"); err != nil {
			return err
		}
		return f.ledger.RecordAdjustment(ctx, tx, p.ID, 8, 6, "admin")
	}))

	movements, err := f.movements.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementIn, movements[0].Type)
	assert.Equal(t, 3, movements[0].Quantity)
	assert.Equal(t, model.MovementOut, movements[1].Type)
	assert.Equal(t, 2, movements[1].Quantity)
	assert.Equal(t, 6, movements[1].StockAfter)
}
