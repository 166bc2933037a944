package service

import (
	"context"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/repository"
	"golang.org/x/sync/errgroup"
)

type Analytics struct {
	domain.OrderSummary
	AverageOrderValue   float64 `json:"averageOrderValue"`
	UnreadNotifications int64   `json:"unreadNotifications"`
	ProductCount        int64   `json:"productCount"`
}

type AnalyticsService struct {
	orders        repository.OrderRepository
	products      repository.ProductRepository
	notifications repository.NotificationRepository
}

func NewAnalyticsService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	notifications repository.NotificationRepository,
) *AnalyticsService {
	return &AnalyticsService{
		orders:        orders,
		products:      products,
		notifications: notifications,
	}
}

// Dashboard gathers the admin numbers; the three queries run concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Analytics, error) {
	var (
		summary  *domain.OrderSummary
		unread   int64
		products int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.orders.Summary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.notifications.UnreadCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := &Analytics{
		OrderSummary:        *summary,
		UnreadNotifications: unread,
		ProductCount:        products,
	}
	if summary.PaidOrders > 0 {
		a.AverageOrderValue = domain.RoundMoney(summary.Revenue / float64(summary.PaidOrders))
	}
	return a, nil
}
