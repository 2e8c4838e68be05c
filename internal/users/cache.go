package users

import (
	"context"
	"sync"
	"time"

	"github.com/bestsplit/bestsplit/internal/models"
)

// Ensure CachedDirectory can stand in wherever a Directory is needed.
var _ Directory = (*CachedDirectory)(nil)

// CachedDirectory wraps a Directory with a bounded, time-invalidated
// lookup cache. It is an explicit object passed by reference to the
// components that need it; there is no package-level cache state.
// Negative results are not cached, so a user that appears after a sync
// resolves on the next lookup.
type CachedDirectory struct {
	inner   Directory
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	user    models.User
	expires time.Time
}

// NewCachedDirectory wraps inner with a cache holding at most maxSize
// entries for at most ttl each.
func NewCachedDirectory(inner Directory, ttl time.Duration, maxSize int) *CachedDirectory {
	return &CachedDirectory{
		inner:   inner,
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Lookup resolves userID, serving from the cache when a fresh entry
// exists.
func (c *CachedDirectory) Lookup(ctx context.Context, userID string) (*models.User, error) {
	c.mu.Lock()
	if e, ok := c.entries[userID]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		user := e.user
		return &user, nil
	}
	c.mu.Unlock()

	user, err := c.inner.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[userID] = cacheEntry{user: *user, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return user, nil
}

// Invalidate drops the cached entry for userID, if any.
func (c *CachedDirectory) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *CachedDirectory) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.expires.Before(oldest) {
			oldestKey, oldest = k, e.expires
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
