package http

import (
	"context"
	"sync"

	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/service"
)

type mockCatalog struct {
	m          sync.RWMutex
	products   []*domain.Product
	product    *domain.Product
	err        error
	lastFilter domain.ProductFilter
	created    *domain.Product
	rating     int
}

func (c *mockCatalog) ListProducts(_ context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.lastFilter = f
	return c.products, c.err
}

func (c *mockCatalog) GetProduct(context.Context, string) (*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.product, c.err
}

func (c *mockCatalog) CreateProduct(_ context.Context, p *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.created = p
	return c.err
}

func (c *mockCatalog) UpdateProduct(_ context.Context, _ string, p *domain.Product) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return p, nil
}

func (c *mockCatalog) DeleteProduct(context.Context, string) error {
	return c.err
}

func (c *mockCatalog) RateProduct(_ context.Context, _ string, rating int) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.rating = rating
	return c.product, c.err
}

type mockCarts struct {
	m      sync.RWMutex
	cartID string
	key    domain.CartKey
	qty    int
	err    error
}

func (c *mockCarts) cart(id string) *domain.Cart {
	return &domain.Cart{ID: id, Items: []domain.CartItem{{ProductID: "p1", Name: "Silk", Price: 1000, Quantity: 2}}}
}

func (c *mockCarts) record(id string, key domain.CartKey, qty int) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.cartID, c.key, c.qty = id, key, qty
	if c.err != nil {
		return nil, c.err
	}
	return c.cart(id), nil
}

func (c *mockCarts) GetCart(_ context.Context, id string) (*domain.Cart, error) {
	return c.record(id, domain.CartKey{}, 0)
}

func (c *mockCarts) AddItem(_ context.Context, id, productID, color string, qty int) (*domain.Cart, error) {
	return c.record(id, domain.CartKey{ProductID: productID, Color: color}, qty)
}

func (c *mockCarts) UpdateQuantity(_ context.Context, id string, key domain.CartKey, qty int) (*domain.Cart, error) {
	return c.record(id, key, qty)
}

func (c *mockCarts) Decrement(_ context.Context, id string, key domain.CartKey) (*domain.Cart, error) {
	return c.record(id, key, -1)
}

func (c *mockCarts) RemoveItem(_ context.Context, id string, key domain.CartKey) (*domain.Cart, error) {
	return c.record(id, key, 0)
}

func (c *mockCarts) ClearCart(_ context.Context, id string) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.cartID = id
	return &domain.Cart{ID: id, Items: []domain.CartItem{}}, c.err
}

type mockOrders struct {
	m      sync.RWMutex
	order  *domain.Order
	orders []*domain.Order
	err    error
	in     service.CreateOrderInput
	filter domain.OrderFilter
	status domain.OrderStatus
}

func (o *mockOrders) CreateOrder(_ context.Context, in service.CreateOrderInput) (*domain.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	o.in = in
	return o.order, o.err
}

func (o *mockOrders) GetOrder(context.Context, string) (*domain.Order, error) {
	return o.order, o.err
}

func (o *mockOrders) ListOrders(_ context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	o.filter = f
	return o.orders, o.err
}

func (o *mockOrders) UpdateStatus(_ context.Context, _ string, status domain.OrderStatus) (*domain.Order, error) {
	o.m.Lock()
	defer o.m.Unlock()
	o.status = status
	return o.order, o.err
}

type mockPayments struct {
	m      sync.RWMutex
	intent *service.IntentResult
	order  *domain.Order
	err    error
	intIn  service.IntentInput
	verIn  service.VerifyInput
}

func (p *mockPayments) CreateIntent(_ context.Context, in service.IntentInput) (*service.IntentResult, error) {
	p.m.Lock()
	defer p.m.Unlock()
	p.intIn = in
	return p.intent, p.err
}

func (p *mockPayments) Verify(_ context.Context, in service.VerifyInput) (*domain.Order, error) {
	p.m.Lock()
	defer p.m.Unlock()
	p.verIn = in
	return p.order, p.err
}

type mockNotifications struct {
	m          sync.RWMutex
	items      []*domain.Notification
	err        error
	unreadOnly bool
	read       *bool
}

func (n *mockNotifications) List(_ context.Context, unreadOnly bool, _ int64) ([]*domain.Notification, error) {
	n.m.Lock()
	defer n.m.Unlock()
	n.unreadOnly = unreadOnly
	return n.items, n.err
}

func (n *mockNotifications) SetRead(_ context.Context, _ string, read bool) error {
	n.m.Lock()
	defer n.m.Unlock()
	n.read = &read
	return n.err
}

func (n *mockNotifications) MarkAllRead(context.Context) (int64, error) {
	return int64(len(n.items)), n.err
}

func (n *mockNotifications) UnreadCount(context.Context) (int64, error) {
	return 7, n.err
}

type mockAuth struct {
	user *domain.User
	err  error
	code string
}

func (a *mockAuth) Signup(_ context.Context, in service.SignupInput) (*domain.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.User{Name: in.Name, Email: in.Email}, nil
}

func (a *mockAuth) SendOTP(context.Context, string) error {
	return a.err
}

func (a *mockAuth) VerifyOTP(_ context.Context, _ string, code string) (*domain.User, error) {
	a.code = code
	return a.user, a.err
}

type mockAnalytics struct {
	a   *service.Analytics
	err error
}

func (m *mockAnalytics) Dashboard(context.Context) (*service.Analytics, error) {
	return m.a, m.err
}
