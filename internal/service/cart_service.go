package service

import (
	"context"
	"errors"

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/repository"
	"go.uber.org/zap"
)

// CartService manages anonymous session carts. Product details are copied
// into the line when added and are not refreshed afterwards.
type CartService struct {
	store    cache.CartStore
	products repository.ProductRepository
	log      *zap.Logger
}

func NewCartService(store cache.CartStore, products repository.ProductRepository, log *zap.Logger) *CartService {
	return &CartService{
		store:    store,
		products: products,
		log:      log,
	}
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, cartID)
	if errors.Is(err, cache.ErrCacheMiss) {
		return &domain.Cart{ID: cartID, Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) AddItem(ctx context.Context, cartID string, productID string, color string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.HasColor(color) {
		return nil, ErrUnknownColor
	}

	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.Add(domain.CartItem{
		ProductID: productID,
		Color:     color,
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		Image:     product.ImageFor(color),
		Quantity:  quantity,
	})
	return s.save(ctx, cart)
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID string, key domain.CartKey, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) bool { return c.SetQuantity(key, quantity) })
}

func (s *CartService) Decrement(ctx context.Context, cartID string, key domain.CartKey) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) bool { return c.Decrement(key) })
}

func (s *CartService) RemoveItem(ctx context.Context, cartID string, key domain.CartKey) (*domain.Cart, error) {
	return s.mutate(ctx, cartID, func(c *domain.Cart) bool { return c.Remove(key) })
}

func (s *CartService) ClearCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return nil, err
	}
	return &domain.Cart{ID: cartID, Items: []domain.CartItem{}}, nil
}

func (s *CartService) mutate(ctx context.Context, cartID string, fn func(*domain.Cart) bool) (*domain.Cart, error) {
	cart, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !fn(cart) {
		return nil, ErrCartItemNotFound
	}
	return s.save(ctx, cart)
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
