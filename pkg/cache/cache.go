// Package cache stores bulk-built aggregate tables between runs.
//
// Building the neighbor aggregate table is the most expensive step of
// starting a run on a large canvas with a large radius. The table depends
// only on the canvas contents and the kernel, so it is cached under a key
// derived from both. Re-running the same input (for example with other
// seeds, or with the score command) then starts immediately.
//
// # Implementations
//
//   - [FileCache]: one binary file per entry under a cache directory
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes the kernel options
// together with the canvas hash; [ScopedKeyer] adds a prefix so tables
// written by an incompatible build are never read back.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources.
	Close() error
}

// DefaultTTL is how long aggregate tables are kept.
const DefaultTTL = 7 * 24 * time.Hour
