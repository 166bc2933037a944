package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fjod/saree_store/internal/cache"
	"github.com/fjod/saree_store/internal/domain"
	"github.com/fjod/saree_store/internal/events"
	"github.com/fjod/saree_store/internal/payment"
	"github.com/fjod/saree_store/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockProductRepository keeps products in memory keyed by hex id.
type mockProductRepository struct {
	m        sync.RWMutex
	products map[string]*domain.Product
	listErr  error
	lists    int
	gets     int
	// conflicts makes the next N UpdateRating calls lose the race
	conflicts int
	// listGate, when set, holds List until it is closed or ctx is done
	listGate chan struct{}
	waiting  atomic.Int32
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	r := &mockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.products[p.ID.Hex()] = p
	}
	return r
}

func (r *mockProductRepository) List(ctx context.Context, _ domain.ProductFilter) ([]*domain.Product, error) {
	if r.listGate != nil {
		r.waiting.Add(1)
		select {
		case <-r.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *mockProductRepository) Get(_ context.Context, id string) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	r.products[p.ID.Hex()] = &cp
	return nil
}

func (r *mockProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	existing, ok := r.products[p.ID.Hex()]
	if !ok {
		return repository.ErrProductNotFound
	}
	cp := *p
	cp.Rating, cp.RatingCount = existing.Rating, existing.RatingCount
	r.products[p.ID.Hex()] = &cp
	return nil
}

func (r *mockProductRepository) Delete(_ context.Context, id string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *mockProductRepository) UpdateRating(_ context.Context, id string, prevCount int, rating float64, count int) error {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if r.conflicts > 0 {
		r.conflicts--
		// someone else rated in between
		p.Rating = (p.Rating*float64(p.RatingCount) + 5) / float64(p.RatingCount+1)
		p.RatingCount++
		return repository.ErrRatingConflict
	}
	if p.RatingCount != prevCount {
		return repository.ErrRatingConflict
	}
	p.Rating, p.RatingCount = rating, count
	return nil
}

func (r *mockProductRepository) Count(context.Context) (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	return int64(len(r.products)), nil
}

type mockCatalogCache struct {
	m           sync.RWMutex
	lists       map[string][]*domain.Product
	products    map[string]*domain.Product
	getErr      error
	invalidated []string
}

func newMockCatalogCache() *mockCatalogCache {
	return &mockCatalogCache{
		lists:    make(map[string][]*domain.Product),
		products: make(map[string]*domain.Product),
	}
}

func (c *mockCatalogCache) GetProducts(_ context.Context, key string) ([]*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	products, ok := c.lists[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return products, nil
}

func (c *mockCatalogCache) SetProducts(_ context.Context, key string, products []*domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.lists[key] = products
	return nil
}

func (c *mockCatalogCache) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.products[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (c *mockCatalogCache) SetProduct(_ context.Context, p *domain.Product) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products[p.ID.Hex()] = p
	return nil
}

func (c *mockCatalogCache) Invalidate(_ context.Context, id string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.invalidated = append(c.invalidated, id)
	c.lists = make(map[string][]*domain.Product)
	delete(c.products, id)
	return nil
}

func (c *mockCatalogCache) listCount() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.lists)
}

type mockCartStore struct {
	m     sync.RWMutex
	carts map[string]domain.Cart
	err   error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: make(map[string]domain.Cart)}
}

func (s *mockCartStore) Get(_ context.Context, id string) (*domain.Cart, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.carts[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	c.Items = append([]domain.CartItem(nil), c.Items...)
	return &c, nil
}

func (s *mockCartStore) Save(_ context.Context, c *domain.Cart) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	s.carts[c.ID] = cp
	return nil
}

func (s *mockCartStore) Delete(_ context.Context, id string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.carts, id)
	return s.err
}

type mockOrderRepository struct {
	m         sync.RWMutex
	orders    map[string]*domain.Order
	createErr error
	markPaid  int
	summary   *domain.OrderSummary
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *mockOrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	r.orders[o.ID.Hex()] = &cp
	return nil
}

func (r *mockOrderRepository) Get(_ context.Context, id string) (*domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepository) List(_ context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]*domain.Order, 0)
	for _, o := range r.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Phone != "" && o.Customer.Phone != f.Phone {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *mockOrderRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepository) AttachGatewayOrder(_ context.Context, id string, gatewayOrderID string) error {
	r.m.Lock()
	defer r.m.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	for otherID, other := range r.orders {
		if otherID != id && other.GatewayOrderID == gatewayOrderID {
			return repository.ErrGatewayOrderBound
		}
	}
	o.GatewayOrderID = gatewayOrderID
	return nil
}

func (r *mockOrderRepository) MarkPaid(_ context.Context, id string, gatewayOrderID string, paymentID string) (*domain.Order, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.markPaid++
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o.Status = domain.OrderStatusPaid
	o.PaymentStatus = domain.PaymentStatusCompleted
	o.GatewayOrderID = gatewayOrderID
	o.PaymentID = paymentID
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepository) Summary(context.Context) (*domain.OrderSummary, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	if r.summary != nil {
		return r.summary, nil
	}
	return &domain.OrderSummary{ByStatus: map[domain.OrderStatus]int64{}}, nil
}

type mockNotificationRepository struct {
	m             sync.RWMutex
	notifications []*domain.Notification
	createErr     error
}

func (r *mockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *mockNotificationRepository) List(_ context.Context, unreadOnly bool, _ int64) ([]*domain.Notification, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]*domain.Notification, 0)
	for _, n := range r.notifications {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *mockNotificationRepository) SetRead(_ context.Context, id string, read bool) error {
	r.m.Lock()
	defer r.m.Unlock()
	for _, n := range r.notifications {
		if n.ID.Hex() == id {
			n.Read = read
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (r *mockNotificationRepository) MarkAllRead(context.Context) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	var n int64
	for _, item := range r.notifications {
		if !item.Read {
			item.Read = true
			n++
		}
	}
	return n, nil
}

func (r *mockNotificationRepository) UnreadCount(context.Context) (int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	var n int64
	for _, item := range r.notifications {
		if !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *mockNotificationRepository) count() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return len(r.notifications)
}

type mockUserRepository struct {
	m       sync.RWMutex
	users   map[string]*domain.User
	touched int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (r *mockUserRepository) Create(_ context.Context, u *domain.User) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrUserExists
	}
	u.ID = primitive.NewObjectID()
	r.users[u.Email] = u
	return nil
}

func (r *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *mockUserRepository) TouchLogin(context.Context, primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	r.touched++
	return nil
}

type mockOTPStore struct {
	m        sync.RWMutex
	hashes   map[string]string
	attempts map[string]int
}

func newMockOTPStore() *mockOTPStore {
	return &mockOTPStore{hashes: make(map[string]string), attempts: make(map[string]int)}
}

func (s *mockOTPStore) Save(_ context.Context, email string, hash string) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.hashes[email] = hash
	s.attempts[email] = 0
	return nil
}

func (s *mockOTPStore) Attempt(_ context.Context, email string) (string, error) {
	s.m.Lock()
	defer s.m.Unlock()
	hash, ok := s.hashes[email]
	if !ok {
		return "", cache.ErrOTPNotFound
	}
	s.attempts[email]++
	if s.attempts[email] > cache.MaxOTPAttempts {
		delete(s.hashes, email)
		return "", cache.ErrOTPTooManyAttempts
	}
	return hash, nil
}

func (s *mockOTPStore) Delete(_ context.Context, email string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.hashes, email)
	return nil
}

type mockMailer struct {
	m     sync.RWMutex
	codes map[string]string
}

func (m *mockMailer) SendOTP(_ context.Context, email string, code string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.codes == nil {
		m.codes = make(map[string]string)
	}
	m.codes[email] = code
	return nil
}

type mockPublisher struct {
	m      sync.RWMutex
	events []events.Event
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, e events.Event) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) types() []events.Type {
	p.m.RLock()
	defer p.m.RUnlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockGateway struct {
	m      sync.RWMutex
	calls  int
	amount int64
	intent *payment.Intent
	err    error
}

func (g *mockGateway) CreateOrder(_ context.Context, amountMinor int64, currency string, receipt string) (*payment.Intent, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.calls++
	g.amount = amountMinor
	if g.err != nil {
		return nil, g.err
	}
	if g.intent != nil {
		return g.intent, nil
	}
	return &payment.Intent{ID: "order_gw_1", Amount: amountMinor, Currency: currency, Receipt: receipt}, nil
}
