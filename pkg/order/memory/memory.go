// Package memory implements an in-memory order repository over the in-memory
// catalog. It gives the same atomicity guarantees as the Postgres repository
// so checkout behavior is testable without a database.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"menuflow/pkg/cart"
	"menuflow/pkg/catalog"
	catalogmem "menuflow/pkg/catalog/memory"
	"menuflow/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
type Repository struct {
	mu      sync.Mutex
	catalog *catalogmem.Repository
	orders  map[string]order.Order
	// byUser keeps order ids per user in placement sequence so history reads
	// are newest-first without relying on timestamp resolution.
	byUser map[string][]string
}

// New creates an in-memory repository backed by the given catalog.
func New(cat *catalogmem.Repository) *Repository {
	return &Repository{
		catalog: cat,
		orders:  make(map[string]order.Order),
		byUser:  make(map[string][]string),
	}
}

// Place validates and commits the cart lines against the catalog. The
// repository mutex serializes checkouts; stock decrements are conditional per
// product, with earlier decrements compensated when a later line fails.
func (r *Repository) Place(ctx context.Context, userID string, lines []cart.Line) (order.Order, error) {
	if len(lines) == 0 {
		return order.Order{}, order.ErrEmptyCart
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o := order.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Total:     decimal.Zero,
		Status:    order.StatusPlaced,
		CreatedAt: time.Now().UTC(),
	}

	var decremented []cart.Line
	rollback := func() {
		for _, ln := range decremented {
			_ = r.catalog.AddStock(ctx, ln.ProductID, ln.Quantity)
		}
	}

	for _, ln := range lines {
		p, err := r.catalog.GetProduct(ctx, ln.ProductID)
		if err != nil {
			rollback()
			return order.Order{}, fmt.Errorf("product %s: %w", ln.ProductID, order.ErrNotFound)
		}
		if err := r.catalog.DecrementStock(ctx, ln.ProductID, ln.Quantity); err != nil {
			rollback()
			var se *catalog.StockError
			if errors.As(err, &se) {
				return order.Order{}, &order.InsufficientStockError{ProductID: se.ProductID}
			}
			return order.Order{}, err
		}
		decremented = append(decremented, ln)

		o.Items = append(o.Items, order.Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   ln.ProductID,
			ProductName: p.Name,
			Quantity:    ln.Quantity,
			UnitPrice:   p.Price,
		})
		o.Total = o.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}

	r.orders[o.ID] = o
	r.byUser[userID] = append(r.byUser[userID], o.ID)
	return o, nil
}

// ListByUser returns the user's orders, most recent first, without items.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.byUser[userID]
	out := make([]order.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		o := r.orders[ids[i]]
		o.Items = nil
		out = append(out, o)
	}
	return out, nil
}

// GetForUser returns the order with its items, or ErrNotFound when it is
// missing or owned by another user.
func (r *Repository) GetForUser(ctx context.Context, orderID, userID string) (order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return order.Order{}, order.ErrNotFound
	}
	out := o
	out.Items = make([]order.Item, len(o.Items))
	copy(out.Items, o.Items)
	return out, nil
}
