// Package redis stores session carts in Redis as JSON blobs.
package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"menuflow/pkg/cart"
)

// Store keeps one JSON-encoded cart per session key. Keys carry the session
// TTL so a cart expires together with its session.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
}

// New creates a Redis-backed cart store.
func New(client *goredis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return "cart:" + sessionID
}

// Load returns the session's cart. A missing key is an empty cart.
func (s *Store) Load(ctx context.Context, sessionID string) (cart.Cart, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err == goredis.Nil {
		return cart.Cart{}, nil
	}
	if err != nil {
		return cart.Cart{}, err
	}
	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return cart.Cart{}, err
	}
	return c, nil
}

// Save writes the cart back, refreshing the TTL.
func (s *Store) Save(ctx context.Context, sessionID string, c cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(sessionID), data, s.ttl).Err()
}

// Delete discards the session's cart.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, key(sessionID)).Err()
}
