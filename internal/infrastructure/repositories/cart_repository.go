package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/storefront/domain"
)

// maxCartRetries bounds optimistic retries when writers collide on one cart
const maxCartRetries = 10

// ErrCartContended is returned when a cart kept changing under Modify
var ErrCartContended = errors.New("cart changed concurrently, retries exhausted")

// CartRepositoryImpl implements domain.CartRepository using Redis.
// Each owner's lines are one JSON document, kept in insertion order.
type CartRepositoryImpl struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository creates a cart repository. Carts expire ttl after their
// last write; zero keeps them forever.
func NewCartRepository(client *redis.Client, ttl time.Duration) domain.CartRepository {
	return &CartRepositoryImpl{client: client, prefix: "cart:", ttl: ttl}
}

type storedLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *CartRepositoryImpl) key(owner string) string {
	return r.prefix + owner
}

func (r *CartRepositoryImpl) load(ctx context.Context, c stringGetter, key string) ([]domain.StoredCartItem, error) {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var lines []storedLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	out := make([]domain.StoredCartItem, len(lines))
	for i, l := range lines {
		out[i] = domain.StoredCartItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out, nil
}

func encodeCart(items []domain.StoredCartItem) ([]byte, error) {
	lines := make([]storedLine, len(items))
	for i, it := range items {
		lines[i] = storedLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cart: %w", err)
	}
	return data, nil
}

// Items implements domain.CartRepository. A missing cart has no items.
func (r *CartRepositoryImpl) Items(ctx context.Context, owner string) ([]domain.StoredCartItem, error) {
	return r.load(ctx, r.client, r.key(owner))
}

// Save implements domain.CartRepository. Saving no items deletes the cart.
func (r *CartRepositoryImpl) Save(ctx context.Context, owner string, items []domain.StoredCartItem) error {
	if len(items) == 0 {
		return r.Delete(ctx, owner)
	}
	data, err := encodeCart(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(owner), data, r.ttl).Err()
}

// Modify implements domain.CartRepository with WATCH/MULTI. A write that
// lost the race is retried against the new contents.
func (r *CartRepositoryImpl) Modify(ctx context.Context, owner string, fn func([]domain.StoredCartItem) ([]domain.StoredCartItem, error)) error {
	key := r.key(owner)
	txf := func(tx *redis.Tx) error {
		items, err := r.load(ctx, tx, key)
		if err != nil {
			return err
		}
		next, err := fn(items)
		if err != nil {
			return err
		}
		var data []byte
		if len(next) > 0 {
			if data, err = encodeCart(next); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if data == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, r.ttl)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxCartRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("cart %s: %w", owner, ErrCartContended)
}

// Delete implements domain.CartRepository
func (r *CartRepositoryImpl) Delete(ctx context.Context, owner string) error {
	return r.client.Del(ctx, r.key(owner)).Err()
}
