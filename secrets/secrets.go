// Package secrets resolves gateway credentials (transaction keys, API
// passwords, SHA-in secrets) from a secret backend. Backends implement the
// Manager interface; a TTL cache in front of each keeps per-transaction
// lookups off the backend.
package secrets

import (
	"context"
	"sync"
	"time"
)

// Secret is one retrieved credential
type Secret struct {
	Value     string
	Version   string
	CreatedAt string
	Metadata  map[string]string
}

// Manager reads and writes credentials by path, e.g.
// "gateways/ogone/sha-in"
type Manager interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
	PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error)
	DeleteSecret(ctx context.Context, path string) error
}

// cache is a TTL map guarding backend round-trips
type cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	enabled bool
	ttl     time.Duration
}

type cacheEntry struct {
	secret    *Secret
	expiresAt time.Time
}

func newCache(enabled bool, ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]*cacheEntry),
		enabled: enabled,
		ttl:     ttl,
	}
}

func (c *cache) get(key string) *Secret {
	if !c.enabled {
		return nil
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	}
	return entry.secret
}

func (c *cache) set(key string, secret *Secret) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		secret:    secret,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *cache) invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
