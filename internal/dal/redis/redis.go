package redis

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client used for the notification marker store.
type Client struct {
	rdb *redis.Client
}

// DB returns the underlying Redis client.
func (c *Client) DB() *redis.Client {
	return c.rdb
}

// Close closes the connection for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MustNewClient creates a new Redis client.
func MustNewClient() *Client {
	addr := fmt.Sprintf("%s:%s",
		os.Getenv("STOREFRONT_REDIS_HOST"),
		os.Getenv("STOREFRONT_REDIS_PORT"),
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("STOREFRONT_REDIS_PASSWORD"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	return &Client{rdb: rdb}
}

// NewClientFromRedis wraps an existing Redis connection. Used by tests that
// run against an embedded server.
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}
