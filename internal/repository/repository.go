package repository

import (
	"context"
	"errors"

	"github.com/fjod/saree_store/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user with this email already exists")
	// ErrRatingConflict means another rating landed between read and write.
	ErrRatingConflict = errors.New("rating changed concurrently")
	// ErrGatewayOrderBound means the gateway order already belongs to another order.
	ErrGatewayOrderBound = errors.New("gateway order is bound to another order")
)

const (
	productsCollection      = "products"
	ordersCollection        = "orders"
	notificationsCollection = "notifications"
	usersCollection         = "users"

	defaultListLimit = 100
)

type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	UpdateRating(ctx context.Context, id string, prevCount int, rating float64, count int) error
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	AttachGatewayOrder(ctx context.Context, id string, gatewayOrderID string) error
	MarkPaid(ctx context.Context, id string, gatewayOrderID string, paymentID string) (*domain.Order, error)
	Summary(ctx context.Context) (*domain.OrderSummary, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, unreadOnly bool, limit int64) ([]*domain.Notification, error)
	SetRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID) error
}

// parseID turns a hex id into an ObjectID, reporting notFound for malformed ids
// since no document can carry them.
func parseID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

func limitOrDefault(limit int64) int64 {
	if limit <= 0 || limit > defaultListLimit {
		return defaultListLimit
	}
	return limit
}
