package service

import (
	"context"
	"time"

	"go-commerce-core/internal/repository"
)

type OrderStats struct {
	ByStatus         []repository.StatusCount `json:"by_status"`
	UnassignedActive int64                    `json:"unassigned_active"`
}

type DashboardService interface {
	GetOrderVolume(ctx context.Context, days int) ([]repository.OrderVolume, error)
	GetOrderStats(ctx context.Context) (*OrderStats, error)
}

type dashboardService struct {
	orderRepo repository.OrderRepository
}

func NewDashboardService(orderRepo repository.OrderRepository) DashboardService {
	return &dashboardService{orderRepo: orderRepo}
}

func (s *dashboardService) GetOrderVolume(ctx context.Context, days int) ([]repository.OrderVolume, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.orderRepo.GetOrderVolume(ctx, startDate, endDate)
}

func (s *dashboardService) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	unassigned, err := s.orderRepo.CountUnassignedActive(ctx)
	if err != nil {
		return nil, err
	}
	return &OrderStats{ByStatus: byStatus, UnassignedActive: unassigned}, nil
}
