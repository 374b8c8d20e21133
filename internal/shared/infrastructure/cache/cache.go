// Package cache provides the time-bound result caches shared by the
// scheduling and preference services.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is how long cached results stay fresh unless configured otherwise.
const DefaultTTL = 5 * time.Minute

// DefaultSize bounds the number of entries held by an in-memory cache.
const DefaultSize = 4096

// Cache is a TTL-bound key/value store. Implementations are safe for
// concurrent use; concurrent Sets on one key resolve last-writer-wins.
type Cache[V any] interface {
	// Get returns the value for key, or false on a miss or an expired entry.
	Get(ctx context.Context, key string) (V, bool)
	// Set stores value under key, restarting its TTL.
	Set(ctx context.Context, key string, value V)
	// Delete drops key if present.
	Delete(ctx context.Context, key string)
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string)
}

// Key joins parts into a composite cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
