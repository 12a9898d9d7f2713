// Package cache provides a small TTL-bounded byte cache used to avoid
// re-probing targets that were traced recently. The file backend is the only
// production implementation; Null serves as the disabled default.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with an optional TTL.
type Cache interface {
	// Get returns the cached value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Null is a Cache that stores nothing. It stands in when caching is
// disabled so callers never branch on nil.
type Null struct{}

// Get always misses.
func (Null) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the value.
func (Null) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (Null) Delete(context.Context, string) error { return nil }
