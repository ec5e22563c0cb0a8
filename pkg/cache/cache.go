// Package cache stores recommendation replies and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Wrap any backend with [Instrument] to report hits, misses and writes to
// the observability cache hooks.
//
// # Keys
//
// A [Keyer] derives keys from the inputs that determine the cached value, so
// equal inputs share an entry. [NewScopedKeyer] adds a prefix for separate
// namespaces on a shared backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// Default lifetimes per entry kind.
const (
	TTLRecommendation = 7 * 24 * time.Hour
	TTLArtifact       = 24 * time.Hour
)
