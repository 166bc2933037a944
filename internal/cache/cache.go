package cache

import (
	"context"
	"errors"

	"github.com/fjod/saree_store/internal/domain"
)

var (
	ErrCacheMiss = errors.New("cache miss")

	ErrOTPNotFound        = errors.New("otp not found or expired")
	ErrOTPTooManyAttempts = errors.New("too many otp attempts")
)

// CatalogCache holds serialized product listings and single products.
type CatalogCache interface {
	GetProducts(ctx context.Context, key string) ([]*domain.Product, error)
	SetProducts(ctx context.Context, key string, products []*domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	// Invalidate drops every cached listing and, when id is set, that product.
	Invalidate(ctx context.Context, id string) error
}

type CartStore interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type OTPStore interface {
	Save(ctx context.Context, email string, codeHash string) error
	// Attempt records one verification attempt and returns the stored hash.
	Attempt(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}
