// Package redis wraps the go-redis client with engine configuration and
// implements the validation report cache.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agroledger/eudr-engine/internal/config"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// Client wraps a go-redis client with the engine's key prefix and default TTL.
type Client struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewClient connects to Redis and verifies connectivity with a bounded ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("redis")

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "redis connection failed")
	}

	log.Info("redis client connected", logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, prefix: cfg.KeyPrefix, ttl: cfg.DefaultTTL, logger: log}, nil
}

// key applies the configured prefix.
func (c *Client) key(k string) string {
	return c.prefix + k
}

// Get reads a raw value; a miss returns ok=false with no error.
func (c *Client) Get(ctx context.Context, k string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, c.key(k)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "cache read failed")
	}
	return data, true, nil
}

// Set writes a raw value with the given TTL; zero TTL uses the default.
func (c *Client) Set(ctx context.Context, k string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	if err := c.rdb.Set(ctx, c.key(k), value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache write failed")
	}
	return nil
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, k string) error {
	if err := c.rdb.Del(ctx, c.key(k)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "cache delete failed")
	}
	return nil
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis ping failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
