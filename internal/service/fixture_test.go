package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"go-storefront/internal/events"
	"go-storefront/internal/metrics"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/testdb"
	"go-storefront/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "secret123"

type recordingPublisher struct {
	mu  sync.Mutex
	got []events.Envelope
}

func (r *recordingPublisher) Publish(_ context.Context, env events.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, env)
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, e := range r.got {
		out = append(out, e.EventType)
	}
	return out
}

type memImages struct {
	mu      sync.Mutex
	saved   map[string]bool
	removed []string
	failing bool
}

func newMemImages() *memImages {
	return &memImages{saved: map[string]bool{}}
}

func (m *memImages) Save(file *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return "", errors.New("disk full")
	}
	path := "uploads/" + file.Filename
	m.saved[path] = true
	return path, nil
}

func (m *memImages) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, path)
	m.removed = append(m.removed, path)
	return nil
}

type fixture struct {
	db        *gorm.DB
	products  repository.ProductRepository
	accounts  repository.AccountRepository
	carts     repository.CartRepository
	orders    repository.OrderRepository
	movements repository.StockMovementRepository

	ledger  *InventoryLedger
	pub     *recordingPublisher
	images  *memImages
	metrics *metrics.Metrics
	tokens  *jwt.Manager

	cartSvc    CartService
	orderSvc   OrderService
	catalogSvc CatalogService
	authSvc    AuthService
	accountSvc AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	f := &fixture{
		db:        db,
		products:  repository.NewProductRepo(db),
		accounts:  repository.NewAccountRepo(db),
		carts:     repository.NewCartRepo(db),
		orders:    repository.NewOrderRepo(db),
		movements: repository.NewStockMovementRepo(db),
		pub:       &recordingPublisher{},
		images:    newMemImages(),
		metrics:   metrics.New("test"),
		tokens: jwt.NewManager(jwt.Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		}),
	}
	emitter := NewEmitter(f.pub, "test", nil)
	f.ledger = NewInventoryLedger(f.products, f.movements, f.metrics)
	f.cartSvc = NewCartService(f.carts, f.products)
	f.orderSvc = NewOrderService(db, f.ledger, f.orders, f.carts, emitter, nil, f.metrics, nil)
	f.catalogSvc = NewCatalogService(db, f.products, f.carts, f.movements, f.ledger, f.images, emitter, nil)
	f.authSvc = NewAuthService(f.accounts, f.tokens, "let-me-in", nil)
	f.accountSvc = NewAccountService(db, f.accounts, f.products, f.carts, f.images, nil)
	return f
}

func (f *fixture) account(t *testing.T, role model.Role, name, email string) Actor {
	t.Helper()
	acc := &model.Account{Name: name, Email: email, Role: role, TokenVersion: "v1"}
	require.NoError(t, acc.SetPassword(testPassword))
	require.NoError(t, f.accounts.Create(context.Background(), acc))
	return Actor{ID: acc.ID, Name: acc.Name, Email: acc.Email, Role: string(acc.Role)}
}

func (f *fixture) product(t *testing.T, owner Actor, name string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:    name,
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
		OwnerID: owner.ID,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, p *model.Product) int {
	t.Helper()
	got, err := f.products.FindByIDUnscoped(context.Background(), p.ID)
	require.NoError(t, err)
	return got.Stock
}

func (f *fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.orders.Count(context.Background())
	require.NoError(t, err)
	return n
}
