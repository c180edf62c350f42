package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is a Redis-backed cache. With silent mode enabled every cache
// failure is logged and downgraded to a miss or a no-op, so cache
// unavailability degrades to document-store-only behavior instead of
// failing the command.
type Client struct {
	rdb    *redis.Client
	silent bool
}

// NewClient creates a Redis cache client. The connection is established
// lazily on first use and re-established the same way after a failure.
func NewClient(addr, password string, silent bool) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		silent: silent,
	}
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		if c.silent {
			slog.Error("Cache get failed, treating as miss", "key", key, "err", err)
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		if c.silent {
			slog.Error("Cache set failed, skipping", "key", key, "err", err)
			return nil
		}
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		if c.silent {
			slog.Error("Cache delete failed, skipping", "key", key, "err", err)
			return nil
		}
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
