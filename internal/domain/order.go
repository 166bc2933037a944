package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusPaid:       {},
	OrderStatusProcessing: {},
	OrderStatusShipped:    {},
	OrderStatusDelivered:  {},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentMethod string

const (
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodOnline || m == PaymentMethodCOD
}

var ErrInvalidOrder = errors.New("invalid order")

// OrderItem is a snapshot of the product at checkout time, not a live reference.
type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
}

type CustomerDetails struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Email   string `bson:"email,omitempty" json:"email,omitempty"`
	Address string `bson:"address" json:"address"`
	City    string `bson:"city" json:"city"`
	Zip     string `bson:"zip" json:"zip"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Items          []OrderItem        `bson:"items" json:"items"`
	Total          float64            `bson:"total" json:"total"`
	Currency       string             `bson:"currency" json:"currency"`
	Status         OrderStatus        `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod  PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	GatewayOrderID string             `bson:"gatewayOrderId,omitempty" json:"gatewayOrderId,omitempty"`
	PaymentID      string             `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Customer       CustomerDetails    `bson:"customerDetails" json:"customerDetails"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderTotal sums price*quantity over the line items.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// RoundMoney rounds an amount to paise.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// ValidateItems checks the checkout cart snapshot.
func ValidateItems(items []OrderItem) error {
	if len(items) == 0 {
		return errors.Join(ErrInvalidOrder, errors.New("items must not be empty"))
	}
	for _, item := range items {
		if item.ProductID == "" {
			return errors.Join(ErrInvalidOrder, errors.New("item productId is required"))
		}
		if item.Quantity < 1 {
			return errors.Join(ErrInvalidOrder, errors.New("item quantity must be at least 1"))
		}
		if item.Price < 0 {
			return errors.Join(ErrInvalidOrder, errors.New("item price must not be negative"))
		}
	}
	return nil
}

func (c CustomerDetails) Validate() error {
	fields := []struct{ name, value string }{
		{"name", c.Name},
		{"phone", c.Phone},
		{"address", c.Address},
		{"city", c.City},
		{"zip", c.Zip},
	}
	missing := make([]string, 0)
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.Join(ErrInvalidOrder, errors.New("missing customer fields: "+strings.Join(missing, ", ")))
	}
	return nil
}

// IsPaid reports whether the gateway payment was verified for this order.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusCompleted
}

// OrderFilter narrows admin and customer order listings.
type OrderFilter struct {
	Status OrderStatus
	Phone  string
	Limit  int64
}

// OrderSummary aggregates order data for the admin dashboard.
type OrderSummary struct {
	TotalOrders int64                 `json:"totalOrders"`
	PaidOrders  int64                 `json:"paidOrders"`
	Revenue     float64               `json:"revenue"`
	ByStatus    map[OrderStatus]int64 `json:"byStatus"`
}
