package service

import (
	"context"
	"testing"
	"time"

	"go-storefront/internal/idempotency"
	"go-storefront/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withIdempotency rebuilds the order service on top of a miniredis-backed store
func (f *fixture) withIdempotency(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := idempotency.NewClient(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })

	store := idempotency.NewStore(rdb, time.Minute)
	f.orderSvc = NewOrderService(f.db, f.ledger, f.orders, f.carts, NewEmitter(f.pub, "test", nil), store, f.metrics, nil)
	return mr
}

func TestPlaceOrderReplaysSameKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mr := f.withIdempotency(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	ann := f.account(t, model.RoleUser, "Ann", "ann@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")

	first, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 2, "key-1")
	require.NoError(t, err)

	again, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 2, "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, f.stock(t, p))
	assert.Equal(t, int64(1), f.orderCount(t))

	stored, err := mr.Get(idempotency.Key(idempotency.KeyOrderPlace, ann.ID.String(), "key-1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), stored)

	// a different key is a different order
	_, err = f.orderSvc.PlaceOrder(ctx, ann, p.ID, 1, "key-2")
	require.NoError(t, err)
	assert.Equal(t, 2, f.stock(t, p))
}

func TestPlaceOrderKeyInProgress(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mr := f.withIdempotency(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	ann := f.account(t, model.RoleUser, "Ann", "ann@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")

	require.NoError(t, mr.Set(idempotency.Key(idempotency.KeyOrderPlace, ann.ID.String(), "busy"), idempotency.Pending))

	_, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 1, "busy")
	assert.ErrorIs(t, err, ErrRequestInProgress)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 5, f.stock(t, p))
	assert.Equal(t, int64(0), f.orderCount(t))
}

func TestFailedOrderReleasesKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mr := f.withIdempotency(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	ann := f.account(t, model.RoleUser, "Ann", "ann@example.com")
	p := f.product(t, admin, "Widget", 1, "10.00")
	key := idempotency.Key(idempotency.KeyOrderPlace, ann.ID.String(), "retry")

	_, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 2, "retry")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.False(t, mr.Exists(key))

	// the client may retry with the same key once the request is valid
	order, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 1, "retry")
	require.NoError(t, err)
	stored, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), stored)
}

func TestCheckoutReplaysSameKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.withIdempotency(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	ann := f.account(t, model.RoleUser, "Ann", "ann@example.com")
	widget := f.product(t, admin, "Widget", 5, "10.00")
	empty := f.product(t, admin, "Empty", 1, "3.00")

	_, err := f.cartSvc.Add(ctx, ann.ID, widget.ID, 2)
	require.NoError(t, err)
	_, err = f.cartSvc.Add(ctx, ann.ID, empty.ID, 1)
	require.NoError(t, err)
	_, err = f.orderSvc.PlaceOrder(ctx, ann, empty.ID, 1, "")
	require.NoError(t, err)

	first, err := f.orderSvc.CheckoutCart(ctx, ann, "checkout-1")
	require.NoError(t, err)
	require.Len(t, first.Orders, 1)
	assert.Equal(t, []string{"Empty"}, first.Unavailable)

	again, err := f.orderSvc.CheckoutCart(ctx, ann, "checkout-1")
	require.NoError(t, err)
	require.Len(t, again.Orders, 1)
	assert.Equal(t, first.Orders[0].ID, again.Orders[0].ID)
	assert.Equal(t, []string{"Empty"}, again.Unavailable)
	assert.Equal(t, 3, f.stock(t, widget))
	assert.Equal(t, int64(2), f.orderCount(t))
}

func TestIdempotencyFailsOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mr := f.withIdempotency(t)
	admin := f.account(t, model.RoleAdmin, "Seller", "seller@example.com")
	ann := f.account(t, model.RoleUser, "Ann", "ann@example.com")
	p := f.product(t, admin, "Widget", 5, "10.00")

	mr.Close()

	_, err := f.orderSvc.PlaceOrder(ctx, ann, p.ID, 1, "key-1")
	require.NoError(t, err)
	_, err = f.orderSvc.PlaceOrder(ctx, ann, p.ID, 1, "key-1")
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, p))
}
