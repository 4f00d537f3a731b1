package service

import (
	"context"
	"time"

	"go-storefront/internal/repository"
)

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	movementRepo  repository.StockMovementRepository
	lowStockLimit int
	now           func() time.Time
}

func NewDashboardService(movementRepo repository.StockMovementRepository, lowStockLimit int) DashboardService {
	if lowStockLimit <= 0 {
		lowStockLimit = 10
	}
	return &dashboardService{movementRepo: movementRepo, lowStockLimit: lowStockLimit, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 || days > 365 {
		return nil, invalid("days must be between 1 and 365")
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.movementRepo.GetStockMovement(ctx, startDate, endDate)
	if err != nil {
		return nil, persistence("failed to fetch stock movement", err)
	}
	if data == nil {
		data = []repository.StockMovementData{}
	}
	return data, nil
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.movementRepo.GetDashboardStats(ctx, s.lowStockLimit)
	if err != nil {
		return nil, persistence("failed to fetch dashboard stats", err)
	}
	return stats, nil
}
