// Package memory implements an in-memory cart store.
package memory

import (
	"context"
	"sync"

	"menuflow/pkg/cart"
)

// Store provides an in-memory implementation of cart.Store.
type Store struct {
	mu    sync.RWMutex
	carts map[string]cart.Cart
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{carts: make(map[string]cart.Cart)}
}

// Load returns the session's cart, empty when absent.
func (s *Store) Load(ctx context.Context, sessionID string) (cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[sessionID]
	if !ok {
		return cart.Cart{}, nil
	}
	// Copy the lines so callers cannot mutate stored state.
	out := cart.Cart{Lines: make([]cart.Line, len(c.Lines))}
	copy(out.Lines, c.Lines)
	return out, nil
}

// Save stores the cart for the session.
func (s *Store) Save(ctx context.Context, sessionID string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cart.Cart{Lines: make([]cart.Line, len(c.Lines))}
	copy(stored.Lines, c.Lines)
	s.carts[sessionID] = stored
	return nil
}

// Delete discards the session's cart.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
