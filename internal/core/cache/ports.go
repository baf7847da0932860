package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get when the key does not exist or has expired.
var ErrKeyNotFound = errors.New("key not found")

// Cache is the key-value store port used for sync state.
type Cache interface {
	// Get returns the stored value, or an error wrapping ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks if the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}
