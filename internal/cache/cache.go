package cache

import (
	"context"
	"time"
)

// Cache is the key-value capability consumed by the snapshot
// repository. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
