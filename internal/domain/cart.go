package domain

import (
	"fmt"
	"strings"
	"time"
)

// CartKey identifies a cart line: the same saree in two colors is two lines.
type CartKey struct {
	ProductID string `json:"productId"`
	Color     string `json:"color,omitempty"`
}

func (k CartKey) String() string {
	if k.Color == "" {
		return k.ProductID
	}
	return fmt.Sprintf("%s:%s", k.ProductID, strings.ToLower(k.Color))
}

func (k CartKey) matches(other CartKey) bool {
	return k.ProductID == other.ProductID && strings.EqualFold(k.Color, other.Color)
}

// CartItem keeps name, price and image as they were when the item was added.
type CartItem struct {
	ProductID string    `json:"productId"`
	Color     string    `json:"color,omitempty"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

func (i CartItem) Key() CartKey {
	return CartKey{ProductID: i.ProductID, Color: i.Color}
}

// Cart is client-owned state. The server only holds it as an opaque session
// blob and never reconciles it against live stock or price.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Add merges the item into an existing line with the same key or appends a new one.
func (c *Cart) Add(item CartItem) {
	if item.Quantity <= 0 {
		return
	}
	c.UpdatedAt = time.Now()
	for i := range c.Items {
		if c.Items[i].Key().matches(item.Key()) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = c.UpdatedAt
	}
	c.Items = append(c.Items, item)
}

// SetQuantity overwrites the line quantity; zero or less removes the line.
// Returns false when no line has the key.
func (c *Cart) SetQuantity(key CartKey, quantity int) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}
	if quantity <= 0 {
		c.removeAt(idx)
		return true
	}
	c.Items[idx].Quantity = quantity
	c.UpdatedAt = time.Now()
	return true
}

// Decrement lowers the quantity by one, dropping the line when it reaches zero.
func (c *Cart) Decrement(key CartKey) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}
	return c.SetQuantity(key, c.Items[idx].Quantity-1)
}

func (c *Cart) Remove(key CartKey) bool {
	idx := c.indexOf(key)
	if idx < 0 {
		return false
	}
	c.removeAt(idx)
	return true
}

func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// Subtotal is the sum of price*quantity over all lines.
func (c *Cart) Subtotal() float64 {
	return OrderTotal(c.OrderItems())
}

// Count is the total number of pieces in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// OrderItems converts cart lines into the checkout snapshot shape.
func (c *Cart) OrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Color:     item.Color,
			Image:     item.Image,
		})
	}
	return items
}

func (c *Cart) indexOf(key CartKey) int {
	for i := range c.Items {
		if c.Items[i].Key().matches(key) {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(idx int) {
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.UpdatedAt = time.Now()
}

// CartView is the cart with its derived totals.
type CartView struct {
	Cart
	Subtotal float64 `json:"subtotal"`
	Count    int     `json:"count"`
}

func (c *Cart) View() CartView {
	return CartView{Cart: *c, Subtotal: c.Subtotal(), Count: c.Count()}
}
