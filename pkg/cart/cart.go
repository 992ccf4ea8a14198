// Package cart holds the ephemeral per-session shopping cart. A cart lives
// exactly as long as its session; nothing here reserves catalog stock.
package cart

import (
	"context"
	"errors"
)

// Line is one product+quantity pair held in a session cart.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the mutable collection of lines for one session. It is plain data;
// session scoping and persistence live in the Store implementations.
type Cart struct {
	Lines []Line `json:"lines"`
}

var (
	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = errors.New("cart: quantity must be positive")
	// ErrNotInCart indicates the product has no line in the cart.
	ErrNotInCart = errors.New("cart: product not in cart")
)

// Add puts qty units of a product into the cart. An existing line for the
// same product is incremented, never duplicated.
func (c *Cart) Add(productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			return nil
		}
	}
	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: qty})
	return nil
}

// SetQuantity replaces a line's quantity. Zero removes the line, same as
// Remove. Setting a positive quantity on an absent product fails.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity = qty
			return nil
		}
	}
	return ErrNotInCart
}

// Remove drops the product's line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Store persists carts keyed by session id. A cart's lifetime matches its
// session; expiry silently discards it. Load of an unknown session returns an
// empty cart, not an error.
type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
}
