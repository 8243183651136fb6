package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"streamaccts/internal/dto"
	"streamaccts/internal/model"
	"streamaccts/internal/repository"
)

const lowStockThreshold = 3

// revenueStatuses are the states in which the money is considered kept.
var revenueStatuses = []model.OrderStatus{
	model.OrderStatusPaid,
	model.OrderStatusProcessing,
	model.OrderStatusFulfilled,
}

type StatsService interface {
	Dashboard(ctx context.Context) (*dto.Stats, error)
}

type statsServiceImpl struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewStatsService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) StatsService {
	return &statsServiceImpl{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *statsServiceImpl) Dashboard(ctx context.Context) (*dto.Stats, error) {
	stats := &dto.Stats{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.orderRepo.StatusCounts(ctx)
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		stats.OrdersByStatus = counts
		for _, n := range counts {
			stats.TotalOrders += n
		}
		return nil
	})

	g.Go(func() error {
		revenue, err := s.orderRepo.Revenue(ctx, revenueStatuses)
		if err != nil {
			return fmt.Errorf("sum revenue: %w", err)
		}
		stats.Revenue = revenue
		return nil
	})

	g.Go(func() error {
		total, active, err := s.productRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		stats.Products, stats.ActiveProducts = total, active
		return nil
	})

	g.Go(func() error {
		low, err := s.productRepo.LowStock(ctx, lowStockThreshold)
		if err != nil {
			return fmt.Errorf("low stock products: %w", err)
		}
		if low == nil {
			low = []*model.Product{}
		}
		stats.LowStock = low
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
