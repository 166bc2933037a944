package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/events"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/repository"
	"go.uber.org/zap"
)

type CreateOrderInput struct {
	Items         []domain.OrderItem
	Customer      domain.CustomerDetails
	PaymentMethod domain.PaymentMethod
}

type OrderService struct {
	orders   repository.OrderRepository
	feed     feed
	currency string
	log      *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	notifications repository.NotificationRepository,
	publisher events.Publisher,
	currency string,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:   orders,
		feed:     feed{notifications: notifications, publisher: publisher, log: log},
		currency: currency,
		log:      log,
	}
}

// CreateOrder persists a pending order. The total is always recomputed from the
// item snapshot; whatever the client believes the total is gets ignored.
// There is no idempotency key, so a resubmitted checkout creates a second order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := domain.ValidateItems(in.Items); err != nil {
		return nil, err
	}
	if err := in.Customer.Validate(); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodOnline
	}
	if !method.Valid() {
		return nil, errors.Join(domain.ErrInvalidOrder, fmt.Errorf("unknown payment method %q", method))
	}

	order := &domain.Order{
		Items:         in.Items,
		Total:         domain.OrderTotal(in.Items),
		Currency:      s.currency,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: method,
		Customer:      in.Customer,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	id := order.ID.Hex()
	logger.FromContext(ctx, s.log).Info("order created",
		zap.String("order_id", id),
		zap.Float64("total", order.Total),
		zap.String("payment_method", string(method)))

	s.feed.notify(ctx, &domain.Notification{
		Type:    domain.NotificationTypeOrder,
		Message: fmt.Sprintf("New order from %s for %s %.2f", order.Customer.Name, order.Currency, order.Total),
		Meta:    map[string]any{"orderId": id, "total": order.Total},
	})
	s.feed.publish(ctx, events.New(events.OrderCreated, id, order))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.orders.List(ctx, filter)
}

// UpdateStatus moves the order to any known status. No transition graph is enforced.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	order, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).Info("order status updated",
		zap.String("order_id", id), zap.String("status", status.String()))
	s.feed.publish(ctx, events.New(events.OrderStatusChanged, id, map[string]any{"status": status}))
	return order, nil
}
