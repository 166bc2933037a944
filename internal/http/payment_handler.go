package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/service"
	"go.uber.org/zap"
)

type PaymentService interface {
	CreateIntent(ctx context.Context, in service.IntentInput) (*service.IntentResult, error)
	Verify(ctx context.Context, in service.VerifyInput) (*domain.Order, error)
}

type PaymentHandler struct {
	payments PaymentService
	timeout  time.Duration
	log      *zap.Logger
}

func NewPaymentHandler(payments PaymentService, timeout time.Duration, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		timeout:  timeout,
		log:      log,
	}
}

type CreateIntentRequestDTO struct {
	Amount   float64 `json:"amount" validate:"gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Receipt  string  `json:"receipt" validate:"max=40"`
}

// VerifyPaymentRequestDTO uses the field names of the gateway checkout callback.
type VerifyPaymentRequestDTO struct {
	GatewayOrderID string `json:"razorpay_order_id" validate:"required"`
	PaymentID      string `json:"razorpay_payment_id" validate:"required"`
	Signature      string `json:"razorpay_signature" validate:"required"`
	OrderID        string `json:"orderId" validate:"required"`
}

type VerifyPaymentResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req CreateIntentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	intent, err := h.payments.CreateIntent(ctx, service.IntentInput{
		Amount:   req.Amount,
		Currency: strings.ToUpper(req.Currency),
		Receipt:  req.Receipt,
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, intent)
}

func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	order, err := h.payments.Verify(ctx, service.VerifyInput{
		GatewayOrderID: req.GatewayOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
		OrderID:        req.OrderID,
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &VerifyPaymentResponse{Success: true, Order: order})
}
