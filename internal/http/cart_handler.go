package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartIDHeader carries the anonymous cart id. The server mints one when absent
// and echoes it on every cart response.
const CartIDHeader = "X-Cart-ID"

type CartService interface {
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, productID string, color string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID string, key domain.CartKey, quantity int) (*domain.Cart, error)
	Decrement(ctx context.Context, cartID string, key domain.CartKey) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID string, key domain.CartKey) (*domain.Cart, error)
	ClearCart(ctx context.Context, cartID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts CartService, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

type UpdateQuantityRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" validate:"min=0,max=99"`
}

type CartItemKeyDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Color     string `json:"color"`
}

func (d CartItemKeyDTO) key() domain.CartKey {
	return domain.CartKey{ProductID: d.ProductID, Color: d.Color}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, cartID)
	h.respondCart(w, r, http.StatusOK, cart, err)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.AddItem(ctx, cartID, req.ProductID, req.Color, req.Quantity)
	h.respondCart(w, r, http.StatusCreated, cart, err)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	key := domain.CartKey{ProductID: req.ProductID, Color: req.Color}
	cart, err := h.carts.UpdateQuantity(ctx, cartID, key, req.Quantity)
	h.respondCart(w, r, http.StatusOK, cart, err)
}

func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req CartItemKeyDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.Decrement(ctx, cartID, req.key())
	h.respondCart(w, r, http.StatusOK, cart, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req CartItemKeyDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.RemoveItem(ctx, cartID, req.key())
	h.respondCart(w, r, http.StatusOK, cart, err)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.carts.ClearCart(ctx, cartID)
	h.respondCart(w, r, http.StatusOK, cart, err)
}

// cartID reads or mints the cart id and always echoes it back.
func (h *CartHandler) cartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.Header.Get(CartIDHeader)
	if raw == "" {
		id := uuid.NewString()
		w.Header().Set(CartIDHeader, id)
		return id, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_cart_id", CartIDHeader+" must be a UUID")
		return "", false
	}
	w.Header().Set(CartIDHeader, id.String())
	return id.String(), true
}

func (h *CartHandler) respondCart(w http.ResponseWriter, r *http.Request, status int, cart *domain.Cart, err error) {
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	respondJSON(w, status, cart.View())
}
