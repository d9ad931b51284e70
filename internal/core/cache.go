// Package core defines the ports shared by the captioning services and their adapters.
package core

import (
	"context"
	"time"
)

// CacheRepository defines the interface for key/value cache operations.
// The core defines the contract and the data layer provides the Redis implementation.
type CacheRepository interface {
	// Get retrieves a value by key. Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Returns true if the key was deleted.
	Delete(ctx context.Context, key string) (bool, error)

	// SetIfNotExists atomically sets a key only if it doesn't already exist.
	// Returns true if the key was set, false if it already existed.
	SetIfNotExists(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// DeleteIfValue removes key only while it still holds value.
	// Returns true if the key was deleted.
	DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error)

	// ExpireIfValue resets the TTL of key only while it still holds value.
	// Returns true if the TTL was updated.
	ExpireIfValue(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}
