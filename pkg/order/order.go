// Package order turns session carts into durable orders and reads them back.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"menuflow/pkg/cart"
)

// Status is the lifecycle state of an order. Orders are created placed and
// stay placed; no further transitions exist.
type Status string

// StatusPlaced is the only status an order ever carries.
const StatusPlaced Status = "placed"

// Order represents a placed customer order. Everything except Status is
// immutable after checkout.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []Item          `json:"items,omitempty"`
}

// Item is one order line. Name and unit price are captured at checkout time
// so later catalog edits never alter past orders.
type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

var (
	// ErrEmptyCart rejects checkout of a cart with no lines.
	ErrEmptyCart = errors.New("order: cart is empty")
	// ErrNotFound indicates the order does not exist for the requesting user.
	// Foreign orders report the same error so their existence never leaks.
	ErrNotFound = errors.New("order: not found")
)

// InsufficientStockError reports the product whose stock could not cover the
// requested quantity. The whole checkout aborts; no partial orders.
type InsufficientStockError struct {
	ProductID string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("order: insufficient stock for product %s", e.ProductID)
}

// Repository persists orders. Place is atomic: the order, every item and every
// stock decrement commit together or not at all. Stock decrements are
// conditional per product (only when current stock covers the quantity), never
// read-then-write.
type Repository interface {
	Place(ctx context.Context, userID string, lines []cart.Line) (Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	GetForUser(ctx context.Context, orderID, userID string) (Order, error)
}
