package cache

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process cache bounded by size and TTL.
type Memory[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewMemory creates a memory cache holding at most size entries for ttl each.
func NewMemory[V any](size int, ttl time.Duration) *Memory[V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory[V]{
		lru: expirable.NewLRU[string, V](size, nil, ttl),
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	return m.lru.Get(key)
}

func (m *Memory[V]) Set(_ context.Context, key string, value V) {
	m.lru.Add(key, value)
}

func (m *Memory[V]) Delete(_ context.Context, key string) {
	m.lru.Remove(key)
}

func (m *Memory[V]) DeletePrefix(_ context.Context, prefix string) {
	for _, key := range m.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.lru.Remove(key)
		}
	}
}

// Len returns the number of live entries.
func (m *Memory[V]) Len() int {
	return m.lru.Len()
}

// Purge drops every entry.
func (m *Memory[V]) Purge() {
	m.lru.Purge()
}
