package cache

import (
	"context"
	"time"
)

// Cache is the key-value capability the signal read and write paths depend
// on. Implementations must treat a missing key as (nil, nil), not an error.
// Callers are expected to treat any returned error as a cache miss: the
// durable store is the source of truth, the cache only avoids fallbacks.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
