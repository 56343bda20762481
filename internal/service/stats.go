package service

import (
	"context"

	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

// StatsService composes the dashboard landing-page summary.
type StatsService struct {
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	contactRepo      repository.ContactRepository
	subscriptionRepo repository.SubscriptionRepository
	logger           *logging.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	contactRepo repository.ContactRepository,
	subscriptionRepo repository.SubscriptionRepository,
) *StatsService {
	return &StatsService{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		contactRepo:      contactRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logging.NewLogger("stats-service"),
	}
}

// AdminStats gathers the order, catalogue, contact and subscriber counters
// shown on the dashboard landing page.
func (s *StatsService) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	totalOrders := 0
	for _, count := range byStatus {
		totalOrders += count
	}

	revenue, pending, err := s.orderRepo.RevenueTotals(ctx)
	if err != nil {
		return nil, err
	}

	totalProducts, activeProducts, err := s.productRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	unread, err := s.contactRepo.UnreadCount(ctx)
	if err != nil {
		return nil, err
	}

	subscribers, err := s.subscriptionRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		OrdersByStatus:   byStatus,
		TotalOrders:      totalOrders,
		TotalRevenue:     revenue,
		PendingPayments:  pending,
		TotalProducts:    totalProducts,
		ActiveProducts:   activeProducts,
		UnreadContacts:   unread,
		TotalSubscribers: subscribers,
	}, nil
}
