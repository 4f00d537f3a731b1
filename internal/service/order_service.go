package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"go-storefront/internal/events"
	"go-storefront/internal/idempotency"
	"go-storefront/internal/metrics"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/pkg/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tracerName = "go-storefront/internal/service"

var ErrOrderNotCancellable = newError(KindConflict, "order can no longer be cancelled")

// IdempotencyStore remembers results of requests that carried an Idempotency-Key
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (existing string, started bool, err error)
	Complete(ctx context.Context, key, value string) error
	Abort(ctx context.Context, key string) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, actor Actor, productID uuid.UUID, quantity int, idemKey string) (*model.Order, error)
	CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) error
	CheckoutCart(ctx context.Context, actor Actor, idemKey string) (*CheckoutResult, error)
	ListOrders(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (*model.Order, error)
}

// CheckoutResult lists the orders created and the products that were skipped
type CheckoutResult struct {
	Orders      []model.Order `json:"orders"`
	Unavailable []string      `json:"unavailable_products"`
}

type checkoutRecord struct {
	OrderIDs    []uuid.UUID `json:"order_ids"`
	Unavailable []string    `json:"unavailable"`
}

type orderService struct {
	db        *gorm.DB
	ledger    *InventoryLedger
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	emitter   *Emitter
	idem      IdempotencyStore
	metrics   *metrics.Metrics
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewOrderService(
	db *gorm.DB,
	ledger *InventoryLedger,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	emitter *Emitter,
	idem IdempotencyStore,
	m *metrics.Metrics,
	log *zap.Logger,
) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		db:        db,
		ledger:    ledger,
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		emitter:   emitter,
		idem:      idem,
		metrics:   m,
		log:       log.Named("orders"),
		tracer:    otel.Tracer(tracerName),
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, actor Actor, productID uuid.UUID, quantity int, idemKey string) (order *model.Order, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
		attribute.Int("order.quantity", quantity),
	))
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOr(ctx, s.log)

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// 1. Replay a previous attempt with the same key
	key := s.claim(ctx, idempotency.KeyOrderPlace, actor.ID, idemKey)
	if key.replay != "" {
		id, perr := uuid.Parse(key.replay)
		if perr != nil {
			return nil, persistence("corrupt idempotency record", perr)
		}
		span.SetAttributes(attribute.Bool("idempotent.replay", true))
		return s.GetOrder(ctx, id, actor.ID)
	}
	if key.err != nil {
		return nil, key.err
	}

	// 2. Reserve stock and snapshot the product in one transaction
	order = &model.Order{
		BaseModel: model.BaseModel{ID: uuid.New()},
		ProductID: productID,
		Quantity:  quantity,
		Status:    model.OrderPending,
		OwnerID:   actor.ID,
	}
	var stockLeft int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.ledger.Reserve(ctx, tx, productID, quantity, MovementRef{OrderID: &order.ID, ActorID: actor.ID.String()})
		if err != nil {
			return err
		}
		snapshot(order, product)
		stockLeft = product.Stock

		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return persistence("failed to save order", err)
		}
		return nil
	})
	if err != nil {
		s.release(ctx, key)
		return nil, txError(err)
	}
	s.complete(ctx, key, order.ID.String())

	// 3. Post-commit side effects
	s.metrics.OrdersPlaced(1)
	log.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("quantity", quantity),
		zap.Int("stock_left", stockLeft),
	)
	s.emitter.emit(ctx, events.OrderPlaced, order.ID.String(), events.OrderPayload{
		OrderID:   order.ID.String(),
		ProductID: productID.String(),
		Quantity:  quantity,
		StockLeft: stockLeft,
		Actor:     actor.event(),
	})
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
	))
	defer func() { endSpan(span, err) }()

	var order *model.Order
	var stockLeft int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)
		found, err := orders.FindByIDAndOwner(ctx, orderID, actor.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return persistence("failed to load order", err)
		}
		if found.Status != model.OrderPending {
			return ErrOrderNotCancellable
		}
		order = found

		stockLeft, err = s.ledger.Release(ctx, tx, order.ProductID, order.Quantity, MovementRef{OrderID: &order.ID, ActorID: actor.ID.String()})
		if err != nil {
			return err
		}
		if err := orders.Delete(ctx, order.ID); err != nil {
			return persistence("failed to delete order", err)
		}
		return nil
	})
	if err != nil {
		return txError(err)
	}

	s.metrics.OrderCancelled()
	logger.FromContextOr(ctx, s.log).Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("product_id", order.ProductID.String()),
		zap.Int("quantity", order.Quantity),
	)
	s.emitter.emit(ctx, events.OrderCancelled, order.ID.String(), events.OrderPayload{
		OrderID:   order.ID.String(),
		ProductID: order.ProductID.String(),
		Quantity:  order.Quantity,
		StockLeft: stockLeft,
		Actor:     actor.event(),
	})
	return nil
}

func (s *orderService) CheckoutCart(ctx context.Context, actor Actor, idemKey string) (result *CheckoutResult, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CheckoutCart")
	defer func() { endSpan(span, err) }()
	log := logger.FromContextOr(ctx, s.log)

	key := s.claim(ctx, idempotency.KeyCartCheckout, actor.ID, idemKey)
	if key.replay != "" {
		span.SetAttributes(attribute.Bool("idempotent.replay", true))
		return s.replayCheckout(ctx, actor.ID, key.replay)
	}
	if key.err != nil {
		return nil, key.err
	}

	var created []*model.Order
	var stockLeft []int
	unavailable := map[string]bool{}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := s.cartRepo.WithTx(tx)
		lines, err := carts.FindByOwner(ctx, actor.ID)
		if err != nil {
			return persistence("failed to read cart", err)
		}
		if len(lines) == 0 {
			return ErrCartEmpty
		}

		// Quantity per product, default 0
		quantities := make(map[uuid.UUID]int, len(lines))
		for _, l := range lines {
			quantities[l.ProductID] = l.Quantity
		}

		processed := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			if l.Product == nil {
				unavailable[l.ProductID.String()] = true
				continue
			}
			if !l.Product.InStock() {
				unavailable[l.Product.Name] = true
				continue
			}
			qty := quantities[l.ProductID]
			if qty <= 0 {
				continue
			}

			order := &model.Order{
				BaseModel: model.BaseModel{ID: uuid.New()},
				ProductID: l.ProductID,
				Quantity:  qty,
				Status:    model.OrderPending,
				OwnerID:   actor.ID,
			}
			product, err := s.ledger.Reserve(ctx, tx, l.ProductID, qty, MovementRef{OrderID: &order.ID, ActorID: actor.ID.String()})
			if errors.Is(err, ErrOutOfStock) || errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrProductNotFound) {
				unavailable[l.Product.Name] = true
				continue
			}
			if err != nil {
				return err
			}
			snapshot(order, product)
			created = append(created, order)
			stockLeft = append(stockLeft, product.Stock)
			processed = append(processed, l.ProductID)
		}

		if err := s.orderRepo.WithTx(tx).CreateBatch(ctx, created); err != nil {
			return persistence("failed to save orders", err)
		}
		if _, err := carts.DeleteByOwnerAndProducts(ctx, actor.ID, processed); err != nil {
			return persistence("failed to clear cart", err)
		}
		return nil
	})
	if err != nil {
		s.release(ctx, key)
		return nil, txError(err)
	}

	result = &CheckoutResult{
		Orders:      make([]model.Order, 0, len(created)),
		Unavailable: sortedNames(unavailable),
	}
	record := checkoutRecord{Unavailable: result.Unavailable}
	for _, o := range created {
		result.Orders = append(result.Orders, *o)
		record.OrderIDs = append(record.OrderIDs, o.ID)
	}
	if raw, merr := json.Marshal(record); merr == nil {
		s.complete(ctx, key, string(raw))
	} else {
		s.release(ctx, key)
	}

	s.metrics.OrdersPlaced(len(created))
	s.metrics.CheckoutUnavailable(len(result.Unavailable))
	log.Info("cart checked out",
		zap.String("account_id", actor.ID.String()),
		zap.Int("orders", len(created)),
		zap.Strings("unavailable", result.Unavailable),
	)

	orderIDs := make([]string, 0, len(created))
	for i, o := range created {
		orderIDs = append(orderIDs, o.ID.String())
		s.emitter.emit(ctx, events.OrderPlaced, o.ID.String(), events.OrderPayload{
			OrderID:   o.ID.String(),
			ProductID: o.ProductID.String(),
			Quantity:  o.Quantity,
			StockLeft: stockLeft[i],
			Actor:     actor.event(),
		})
	}
	s.emitter.emit(ctx, events.CartCheckedOut, actor.ID.String(), events.CheckoutPayload{
		OrderIDs:    orderIDs,
		Unavailable: result.Unavailable,
		Actor:       actor.event(),
	})
	return result, nil
}

func (s *orderService) ListOrders(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, persistence("failed to fetch orders", err)
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID, ownerID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDAndOwner(ctx, orderID, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistence("failed to fetch order", err)
	}
	return order, nil
}

func (s *orderService) replayCheckout(ctx context.Context, ownerID uuid.UUID, raw string) (*CheckoutResult, error) {
	var record checkoutRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, persistence("corrupt idempotency record", err)
	}
	orders, err := s.orderRepo.FindByIDsAndOwner(ctx, record.OrderIDs, ownerID)
	if err != nil {
		return nil, persistence("failed to fetch orders", err)
	}
	unavailable := record.Unavailable
	if unavailable == nil {
		unavailable = []string{}
	}
	return &CheckoutResult{Orders: orders, Unavailable: unavailable}, nil
}

// ---- idempotency ----

type claimedKey struct {
	key    string
	replay string
	err    error
}

// claim reserves the idempotency key. Without a store or key, or when the
// store is unreachable, the request runs without replay protection.
func (s *orderService) claim(ctx context.Context, template string, accountID uuid.UUID, idemKey string) claimedKey {
	if s.idem == nil || idemKey == "" {
		return claimedKey{}
	}
	key := idempotency.Key(template, accountID.String(), idemKey)
	existing, started, err := s.idem.Begin(ctx, key)
	if err != nil {
		logger.FromContextOr(ctx, s.log).Warn("idempotency store unavailable", zap.Error(err))
		return claimedKey{}
	}
	if started {
		return claimedKey{key: key}
	}
	if existing == idempotency.Pending {
		return claimedKey{err: ErrRequestInProgress}
	}
	return claimedKey{replay: existing}
}

func (s *orderService) complete(ctx context.Context, k claimedKey, value string) {
	if k.key == "" {
		return
	}
	if err := s.idem.Complete(ctx, k.key, value); err != nil {
		logger.FromContextOr(ctx, s.log).Warn("store idempotent result", zap.String("key", k.key), zap.Error(err))
	}
}

func (s *orderService) release(ctx context.Context, k claimedKey) {
	if k.key == "" {
		return
	}
	if err := s.idem.Abort(ctx, k.key); err != nil {
		logger.FromContextOr(ctx, s.log).Warn("release idempotency key", zap.String("key", k.key), zap.Error(err))
	}
}

// ---- helpers ----

func snapshot(order *model.Order, product *model.Product) {
	order.ProductName = product.Name
	order.Price = product.Price
	order.SellerName = product.SellerName()
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// txError keeps classified errors and marks everything else (commit failures) as persistence
func txError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return persistence("transaction failed", err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
