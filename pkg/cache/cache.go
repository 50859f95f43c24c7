// Package cache stores rendered diagram images between runs.
//
// Rendering a PlantUML or Graphviz diagram is the slowest step of a
// conversion: the jar starts a JVM and the server mode needs a round trip.
// The diagram resolver looks images up by a content hash of the tool, the
// target format and the source bytes, so an unchanged diagram is never
// rendered twice. The cache only ever saves work; a miss or a failing cache
// falls back to rendering.
//
//   - [FileCache]: entries as files under a directory (the CLI uses
//     $XDG_CACHE_HOME/reqdoc)
//   - [NullCache]: stores nothing, used with --no-cache and in tests
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the data stored under key. A missing or expired entry is
	// a miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}
