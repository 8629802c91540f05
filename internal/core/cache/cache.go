// Package cache defines the key-value interface session state is kept in.
package cache

import (
	"context"
	"time"
)

// Client defines the interface for cache operations.
type Client interface {
	// Get retrieves a value from the cache by key.
	// Returns nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache. A ttl of 0 keeps the key until it is deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Keys lists the keys matching a glob pattern such as "session:*".
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Ping checks if the cache connection is alive.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}
