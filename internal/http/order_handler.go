package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

type OrderHandler struct {
	orders  OrderService
	timeout time.Duration
	log     *zap.Logger
}

func NewOrderHandler(orders OrderService, timeout time.Duration, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		timeout: timeout,
		log:     log,
	}
}

type OrderItemDTO struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Color     string  `json:"color"`
	Image     string  `json:"image"`
}

type CustomerDetailsDTO struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
}

// CreateOrderRequestDTO is the checkout payload. A client-side total, if sent, is ignored.
type CreateOrderRequestDTO struct {
	Items           []OrderItemDTO     `json:"items" validate:"required,min=1,dive"`
	CustomerDetails CustomerDetailsDTO `json:"customerDetails"`
	PaymentMethod   string             `json:"paymentMethod" validate:"omitempty,oneof=online cod"`
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status" validate:"required"`
}

type OrdersResponse struct {
	Orders []*domain.Order `json:"orders"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Image:     it.Image,
		}
	}
	c := req.CustomerDetails
	in := service.CreateOrderInput{
		Items: items,
		Customer: domain.CustomerDetails{
			Name:    strings.TrimSpace(c.Name),
			Phone:   strings.TrimSpace(c.Phone),
			Email:   domain.NormalizeEmail(c.Email),
			Address: strings.TrimSpace(c.Address),
			City:    strings.TrimSpace(c.City),
			Zip:     strings.TrimSpace(c.Zip),
		},
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	order, err := h.orders.CreateOrder(ctx, in)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "order id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// ListByPhone is the customer order-tracking lookup.
func (h *OrderHandler) ListByPhone(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "phone is required")
		return
	}
	h.list(w, r, domain.OrderFilter{Phone: phone})
}

// ListAll is the admin listing, optionally narrowed by status and phone.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Status: domain.OrderStatus(q.Get("status")),
		Phone:  strings.TrimSpace(q.Get("phone")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	h.list(w, r, filter)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	order, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "id"), domain.OrderStatus(strings.ToLower(req.Status)))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filter domain.OrderFilter) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &OrdersResponse{Orders: orders})
}
