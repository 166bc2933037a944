package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/events"
	"github.com/fjod/saree_store/internal/logger"
	"github.com/fjod/saree_store/internal/payment"
	"github.com/fjod/saree_store/internal/repository"
	"go.uber.org/zap"
)

type IntentInput struct {
	Amount   float64
	Currency string
	// Receipt is the local order id when the intent is created for an order.
	Receipt string
}

type IntentResult struct {
	payment.Intent
	KeyID string `json:"keyId"`
}

type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	OrderID        string
}

type PaymentService struct {
	gateway   payment.Gateway
	orders    repository.OrderRepository
	feed      feed
	keyID     string
	keySecret string
	currency  string
	log       *zap.Logger
}

func NewPaymentService(
	gateway payment.Gateway,
	orders repository.OrderRepository,
	notifications repository.NotificationRepository,
	publisher events.Publisher,
	keyID, keySecret, currency string,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:   gateway,
		orders:    orders,
		feed:      feed{notifications: notifications, publisher: publisher, log: log},
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		log:       log,
	}
}

// CreateIntent opens a gateway order. When the receipt names one of our orders the
// amount and currency must match that order, and the gateway order is bound to it.
func (s *PaymentService) CreateIntent(ctx context.Context, in IntentInput) (*IntentResult, error) {
	if s.keyID == "" || s.keySecret == "" {
		return nil, ErrPaymentsDisabled
	}
	amount := payment.ToMinorUnits(in.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := in.Currency
	if currency == "" {
		currency = s.currency
	}

	log := logger.FromContext(ctx, s.log)

	var order *domain.Order
	if in.Receipt != "" {
		o, err := s.orders.Get(ctx, in.Receipt)
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			// receipt is free-form; not every receipt is one of our orders
		case err != nil:
			return nil, err
		default:
			order = o
		}
	}
	if order != nil {
		if order.IsPaid() {
			return nil, ErrOrderPaid
		}
		if in.Currency == "" && order.Currency != "" {
			currency = order.Currency
		}
		if amount != payment.ToMinorUnits(order.Total) || (order.Currency != "" && currency != order.Currency) {
			log.Warn("intent amount does not match order",
				zap.String("order_id", in.Receipt), zap.Int64("amount", amount), zap.Float64("total", order.Total))
			return nil, ErrAmountMismatch
		}
	}

	intent, err := s.gateway.CreateOrder(ctx, amount, currency, in.Receipt)
	if err != nil {
		log.Error("failed to create payment intent",
			zap.String("receipt", in.Receipt), zap.Int64("amount", amount), zap.Error(err))
		return nil, err
	}

	if order != nil {
		if err := s.orders.AttachGatewayOrder(ctx, in.Receipt, intent.ID); err != nil {
			log.Error("failed to attach gateway order",
				zap.String("order_id", in.Receipt), zap.String("gateway_order_id", intent.ID), zap.Error(err))
			return nil, err
		}
	}

	log.Info("payment intent created",
		zap.String("gateway_order_id", intent.ID), zap.Int64("amount", intent.Amount))
	return &IntentResult{Intent: *intent, KeyID: s.keyID}, nil
}

// Verify checks the gateway callback signature and marks the order paid. The
// gateway order in the callback must be the one bound to the order by CreateIntent.
// Marking paid and notifying are two independent writes; a failed notification is logged only.
func (s *PaymentService) Verify(ctx context.Context, in VerifyInput) (*domain.Order, error) {
	log := logger.FromContext(ctx, s.log).With(
		zap.String("order_id", in.OrderID),
		zap.String("gateway_order_id", in.GatewayOrderID),
		zap.String("payment_id", in.PaymentID))

	if s.keySecret == "" {
		log.Error("payment verification attempted without a key secret")
		return nil, ErrPaymentsDisabled
	}
	if !payment.VerifySignature(s.keySecret, in.GatewayOrderID, in.PaymentID, in.Signature) {
		log.Warn("payment signature mismatch")
		return nil, ErrInvalidSignature
	}

	order, err := s.orders.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.GatewayOrderID == "" || order.GatewayOrderID != in.GatewayOrderID {
		log.Warn("payment for another gateway order", zap.String("expected", order.GatewayOrderID))
		return nil, ErrPaymentMismatch
	}
	if order.IsPaid() {
		if order.PaymentID == in.PaymentID {
			// callback replay
			return order, nil
		}
		return nil, ErrOrderPaid
	}

	order, err = s.orders.MarkPaid(ctx, in.OrderID, in.GatewayOrderID, in.PaymentID)
	if err != nil {
		return nil, err
	}
	log.Info("payment verified")

	s.feed.notify(ctx, &domain.Notification{
		Type:    domain.NotificationTypeOrder,
		Message: fmt.Sprintf("Payment received for order %s: %s %.2f", in.OrderID, order.Currency, order.Total),
		Meta: map[string]any{
			"orderId":   in.OrderID,
			"paymentId": in.PaymentID,
			"amount":    order.Total,
		},
	})
	s.feed.publish(ctx, events.New(events.PaymentCaptured, in.OrderID, map[string]any{
		"gatewayOrderId": in.GatewayOrderID,
		"paymentId":      in.PaymentID,
		"amount":         order.Total,
		"currency":       order.Currency,
	}))
	return order, nil
}
