package recipe

import (
	"sync"
	"time"

	"meal-planner/internal/core/source"
	"meal-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultTTL is how long a parsed recipe stays valid before it must be
// re-fetched and re-parsed.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is an in-memory recipe store with lazy TTL expiry. Recipes are
// addressable by internal ID and by their (source, source_id) platform
// identity; both views always agree.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	recipes map[string]*Recipe
	byIdent map[identKey]string
}

type identKey struct {
	src source.Source
	id  string
}

// NewCache creates a cache. A non-positive ttl falls back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		recipes: make(map[string]*Recipe),
		byIdent: make(map[identKey]string),
	}
}

// TTL returns the configured recipe lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Put stores a recipe. CachedAt is stamped when unset; the expiry is
// defaulted to CachedAt plus the cache TTL only when it is unset or not
// later than CachedAt, so a caller-supplied expiry survives. A recipe with
// the same platform identity replaces the previous entry.
func (c *Cache) Put(r *Recipe) {
	if r.CachedAt.IsZero() {
		r.CachedAt = time.Now().UTC()
	}
	if r.CacheExpiresAt.IsZero() || !r.CacheExpiresAt.After(r.CachedAt) {
		r.CacheExpiresAt = r.CachedAt.Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := identKey{src: r.Source, id: r.SourceID}
	if oldID, ok := c.byIdent[key]; ok && oldID != r.ID {
		delete(c.recipes, oldID)
	}
	c.recipes[r.ID] = r
	c.byIdent[key] = r.ID
}

// Get returns the recipe with the given internal ID, or nil if absent or
// expired. Expired entries are removed on access.
func (c *Cache) Get(id string) *Recipe {
	c.mu.RLock()
	r, ok := c.recipes[id]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().UTC().After(r.CacheExpiresAt) {
		c.evict(r)
		return nil
	}
	return r
}

// GetBySource returns the recipe with the given platform identity, or nil
// if absent or expired.
func (c *Cache) GetBySource(src source.Source, sourceID string) *Recipe {
	c.mu.RLock()
	id, ok := c.byIdent[identKey{src: src, id: sourceID}]
	var r *Recipe
	if ok {
		r = c.recipes[id]
	}
	c.mu.RUnlock()
	if r == nil {
		return nil
	}
	if time.Now().UTC().After(r.CacheExpiresAt) {
		c.evict(r)
		return nil
	}
	return r
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.recipes)
}

// CleanupExpired removes every expired entry and returns how many were
// dropped.
func (c *Cache) CleanupExpired() int {
	now := time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, r := range c.recipes {
		if now.After(r.CacheExpiresAt) {
			delete(c.recipes, id)
			delete(c.byIdent, identKey{src: r.Source, id: r.SourceID})
			removed++
		}
	}
	if removed > 0 {
		common.LogDebug("recipe cache cleanup", zap.Int("removed", removed))
	}
	return removed
}

func (c *Cache) evict(r *Recipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the write lock; another goroutine may have replaced
	// the entry since the read.
	cur, ok := c.recipes[r.ID]
	if !ok || cur != r {
		return
	}
	delete(c.recipes, r.ID)
	delete(c.byIdent, identKey{src: r.Source, id: r.SourceID})
}
