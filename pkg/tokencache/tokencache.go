// Package tokencache stores one short-lived bearer token under a fixed key.
// Concurrent refreshes may overwrite each other; that is acceptable because
// any token within its validity window is as good as another.
package tokencache

import (
	"context"
	"sync"
	"time"
)

// Cache is the process-wide token store shared by all gateway callers.
type Cache interface {
	// Get returns the cached token and whether it is still valid.
	Get(ctx context.Context) (string, bool)
	// Put overwrites the cached token with the given time to live.
	Put(ctx context.Context, token string, ttl time.Duration) error
}

// MemoryCache keeps the token in process memory. The clock is injectable so
// tests can control expiry deterministically.
type MemoryCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

func NewMemoryCache(now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{now: now}
}

func (c *MemoryCache) Get(ctx context.Context) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || !c.now().Before(c.expiry) {
		return "", false
	}
	return c.token, true
}

func (c *MemoryCache) Put(ctx context.Context, token string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = c.now().Add(ttl)
	return nil
}
