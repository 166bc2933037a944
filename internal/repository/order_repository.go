package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/saree_store/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection(ordersCollection),
	}
}

func (m *mongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *mongoOrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := parseID(id, ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	var order domain.Order
	err = m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *mongoOrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]*domain.Order, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Phone != "" {
		filter["customerDetails.phone"] = f.Phone
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limitOrDefault(f.Limit))

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]*domain.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (m *mongoOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return m.findAndSet(ctx, id, bson.M{"status": status})
}

func (m *mongoOrderRepository) AttachGatewayOrder(ctx context.Context, id string, gatewayOrderID string) error {
	_, err := m.findAndSet(ctx, id, bson.M{"gatewayOrderId": gatewayOrderID})
	return err
}

// MarkPaid records the verified gateway payment on the order.
func (m *mongoOrderRepository) MarkPaid(ctx context.Context, id string, gatewayOrderID string, paymentID string) (*domain.Order, error) {
	return m.findAndSet(ctx, id, bson.M{
		"status":         domain.OrderStatusPaid,
		"paymentStatus":  domain.PaymentStatusCompleted,
		"gatewayOrderId": gatewayOrderID,
		"paymentId":      paymentID,
	})
}

func (m *mongoOrderRepository) findAndSet(ctx context.Context, id string, fields bson.M) (*domain.Order, error) {
	oid, err := parseID(id, ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	fields["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order domain.Order
	err = m.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrGatewayOrderBound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &order, nil
}

type statusBucket struct {
	Status  domain.OrderStatus `bson:"_id"`
	Count   int64              `bson:"count"`
	Paid    int64              `bson:"paid"`
	Revenue float64            `bson:"revenue"`
}

// Summary groups orders by status; revenue only counts verified payments.
func (m *mongoOrderRepository) Summary(ctx context.Context) (*domain.OrderSummary, error) {
	paid := bson.M{"$eq": bson.A{"$paymentStatus", domain.PaymentStatusCompleted}}
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"paid":    bson.M{"$sum": bson.M{"$cond": bson.A{paid, 1, 0}}},
			"revenue": bson.M{"$sum": bson.M{"$cond": bson.A{paid, "$total", 0.0}}},
		}}},
	}

	cursor, err := m.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []statusBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode order summary: %w", err)
	}

	summary := &domain.OrderSummary{ByStatus: make(map[domain.OrderStatus]int64, len(buckets))}
	for _, b := range buckets {
		summary.ByStatus[b.Status] = b.Count
		summary.TotalOrders += b.Count
		summary.PaidOrders += b.Paid
		summary.Revenue += b.Revenue
	}
	return summary, nil
}
