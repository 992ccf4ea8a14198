package order

import (
	"context"

	"menuflow/pkg/cart"
)

// Finalizer converts a session's cart into a durable order and clears the
// cart on success.
type Finalizer struct {
	repo  Repository
	carts cart.Store
}

// NewFinalizer creates a Finalizer over the given repositories.
func NewFinalizer(repo Repository, carts cart.Store) *Finalizer {
	return &Finalizer{repo: repo, carts: carts}
}

// PlaceOrder loads the session's cart, commits it as an order and discards
// the cart. Validation and business-rule failures (empty cart, insufficient
// stock) leave the cart untouched so the caller can correct and retry.
func (f *Finalizer) PlaceOrder(ctx context.Context, userID, sessionID string) (Order, error) {
	c, err := f.carts.Load(ctx, sessionID)
	if err != nil {
		return Order{}, err
	}
	if c.IsEmpty() {
		return Order{}, ErrEmptyCart
	}
	o, err := f.repo.Place(ctx, userID, c.Lines)
	if err != nil {
		return Order{}, err
	}
	// The order is committed; if the delete fails the stale cart key simply
	// expires with the session.
	_ = f.carts.Delete(ctx, sessionID)
	return o, nil
}
