// Package postgres implements the order repository over PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"menuflow/pkg/cart"
	"menuflow/pkg/order"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the order tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			total      NUMERIC(10,2) NOT NULL,
			status     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS order_items (
			id           TEXT PRIMARY KEY,
			order_id     TEXT NOT NULL REFERENCES orders(id),
			product_id   TEXT NOT NULL,
			product_name TEXT NOT NULL,
			quantity     INT NOT NULL,
			unit_price   NUMERIC(10,2) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS orders_user_created ON orders (user_id, created_at DESC);`)
	return err
}

// Place runs the whole checkout in one transaction: re-read each product's
// current price, decrement its stock conditionally, then insert the order and
// its items. Any failure rolls back everything.
func (r *Repository) Place(ctx context.Context, userID string, lines []cart.Line) (order.Order, error) {
	if len(lines) == 0 {
		return order.Order{}, order.ErrEmptyCart
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	o := order.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Total:     decimal.Zero,
		Status:    order.StatusPlaced,
		CreatedAt: time.Now().UTC(),
	}

	for _, ln := range lines {
		var name string
		var price decimal.Decimal
		err := tx.QueryRowContext(ctx, "SELECT name, price FROM products WHERE id=$1", ln.ProductID).
			Scan(&name, &price)
		if err == sql.ErrNoRows {
			return order.Order{}, fmt.Errorf("product %s: %w", ln.ProductID, order.ErrNotFound)
		}
		if err != nil {
			return order.Order{}, err
		}

		// Conditional compare-and-decrement. Zero rows affected means the
		// stock no longer covers the quantity, and the whole checkout aborts.
		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2",
			ln.ProductID, ln.Quantity)
		if err != nil {
			return order.Order{}, err
		}
		if n, err := res.RowsAffected(); err != nil {
			return order.Order{}, err
		} else if n == 0 {
			return order.Order{}, &order.InsufficientStockError{ProductID: ln.ProductID}
		}

		o.Items = append(o.Items, order.Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   ln.ProductID,
			ProductName: name,
			Quantity:    ln.Quantity,
			UnitPrice:   price,
		})
		o.Total = o.Total.Add(price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO orders (id, user_id, total, status, created_at) VALUES ($1,$2,$3,$4,$5)",
		o.ID, o.UserID, o.Total, string(o.Status), o.CreatedAt); err != nil {
		return order.Order{}, err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price) VALUES ($1,$2,$3,$4,$5,$6)",
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice); err != nil {
			return order.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return o, nil
}

// ListByUser returns the user's orders, most recent first, without items.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, total, status, created_at FROM orders WHERE user_id=$1 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []order.Order
	for rows.Next() {
		var o order.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = order.Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetForUser returns the order with its items. An order owned by another user
// reports ErrNotFound, same as a missing one.
func (r *Repository) GetForUser(ctx context.Context, orderID, userID string) (order.Order, error) {
	var o order.Order
	var status string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, total, status, created_at FROM orders WHERE id=$1 AND user_id=$2",
		orderID, userID).
		Scan(&o.ID, &o.UserID, &o.Total, &status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return order.Order{}, order.ErrNotFound
	}
	if err != nil {
		return order.Order{}, err
	}
	o.Status = order.Status(status)

	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_id, product_id, product_name, quantity, unit_price FROM order_items WHERE order_id=$1",
		orderID)
	if err != nil {
		return order.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return order.Order{}, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}
