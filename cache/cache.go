// Package cache holds recently crawled result sets so a repeated
// platform+keyword request within the configured max age skips a full
// browser job.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/zoontopia/shopcrawl/models"
)

// entry holds a cached result set with its creation timestamp.
type entry struct {
	products  []models.Product
	createdAt time.Time
}

// Cache is a simple in-memory result cache. It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	maxAge     time.Duration
}

// New creates a Cache bounded to maxEntries, with entries servable for
// maxAge. A background goroutine evicts expired entries every 5 minutes.
// A non-positive maxAge disables the cache entirely.
func New(maxEntries int, maxAge time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
	}
	if maxAge > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Key generates a cache key from the platform and keyword.
func Key(platform, keyword string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(platform)))
	h.Write([]byte("|"))
	h.Write([]byte(keyword))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result set younger than the max age.
func (c *Cache) Get(key string) ([]models.Product, bool) {
	if c.maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok || time.Since(e.createdAt) > c.maxAge {
		return nil, false
	}
	return e.products, true
}

// Set stores a result set. When the cache is full and the key is new,
// the oldest entry is evicted to make room; overwriting an existing key
// needs no room and must not evict anything.
func (c *Cache) Set(key string, products []models.Product) {
	if c.maxAge <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.store[key] = &entry{products: products, createdAt: time.Now()}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for k, e := range c.store {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.store, oldestKey)
	}
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.maxAge)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
