package cache

import (
	"context"
	"errors"
)

// CartStorage is the key-value store the cart persists itself to.
// Values are opaque strings; the cart owns the encoding.
type CartStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")
