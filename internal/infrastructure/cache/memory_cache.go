package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss is returned by MemoryCache for absent or expired keys,
// mirroring the miss-is-an-error contract of the Redis client.
var ErrCacheMiss = errors.New("cache: key not found")

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Cache used when no Redis address is
// configured, keeping the bulletin board a single self-contained binary.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache() Cache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
