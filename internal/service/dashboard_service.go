package service

import (
	"context"

	"go-pos-inventory/internal/flags"
	"go-pos-inventory/internal/repository"
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*repository.InventoryStats, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	flags       *flags.Provider
}

func NewDashboardService(pRepo repository.ProductRepository, provider *flags.Provider) DashboardService {
	return &dashboardService{productRepo: pRepo, flags: provider}
}

// GetDashboardStats counts products below the configured minimum stock.
func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.InventoryStats, error) {
	f := s.flags.Load(ctx)
	return s.productRepo.Stats(ctx, f.DefaultMinimumStock)
}
