package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache shared across processes. Values are stored as JSON under
// "<prefix>:<key>". Redis failures degrade to cache misses.
type Redis[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// scanBatch is the COUNT hint of the SCAN behind DeletePrefix.
const scanBatch = 100

// NewRedis creates a Redis-backed cache.
func NewRedis[V any](client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *Redis[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis[V]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *Redis[V]) namespaceKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V

	data, err := r.client.Get(ctx, r.namespaceKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false
	}
	if err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
		return zero, false
	}

	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		r.logger.Warn("cache entry undecodable", "key", key, "error", err)
		return zero, false
	}
	return value, true
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache entry unencodable", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.namespaceKey(key), data, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *Redis[V]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.namespaceKey(key)).Err(); err != nil {
		r.logger.Warn("cache delete failed", "key", key, "error", err)
	}
}

// DeletePrefix scans for the keys under prefix and deletes them.
func (r *Redis[V]) DeletePrefix(ctx context.Context, prefix string) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.scanPattern(prefix), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cache delete failed", "prefix", prefix, "keys", len(keys), "error", err)
	}
}

// scanPattern matches the namespaced keys starting with prefix.
func (r *Redis[V]) scanPattern(prefix string) string {
	return globEscaper.Replace(r.namespaceKey(prefix)) + "*"
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)
