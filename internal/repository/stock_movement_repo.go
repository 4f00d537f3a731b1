package repository

import (
	"context"
	"time"

	"go-storefront/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	WithTx(tx *gorm.DB) StockMovementRepository
	Create(ctx context.Context, movement *model.StockMovement) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, lowStockLimit int) (*DashboardStats, error)
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts  int64  `json:"total_products"`
	LowStockCount  int64  `json:"low_stock_count"`
	OutOfStock     int64  `json:"out_of_stock_count"`
	TotalValuation string `json:"total_valuation"`
	TotalOrders    int64  `json:"total_orders"`
}

type stockMovementRepo struct {
	db *gorm.DB
}

func NewStockMovementRepo(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db}
}

func (r *stockMovementRepo) WithTx(tx *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{tx}
}

func (r *stockMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *stockMovementRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

func (r *stockMovementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	// Aggregate movements per day
	err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			CAST(DATE(created_at) AS TEXT) as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results).Error

	return results, err
}

func (r *stockMovementRepo) GetDashboardStats(ctx context.Context, lowStockLimit int) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock < ?", lowStockLimit).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Product{}).Where("stock <= 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}

	// Total Valuation (SUM of stock * price)
	var valuation decimal.Decimal
	if err := db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)").Row().Scan(&valuation); err != nil {
		return nil, err
	}
	stats.TotalValuation = valuation.StringFixed(2)

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
