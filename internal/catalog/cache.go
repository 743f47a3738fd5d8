package catalog

import (
	"image"
	"sync"

	"go.uber.org/zap"
)

// Cache is a concurrency-safe cache of decoded textures keyed by path.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]*cacheEntry
	maxSize int
	logger  *zap.SugaredLogger
}

type cacheEntry struct {
	img    *image.NRGBA
	loaded bool // true if we've attempted to load (img may still be nil)
}

// NewCache creates a texture cache. Textures larger than maxSize on either
// side are scaled down once on load; maxSize <= 0 keeps full resolution.
func NewCache(maxSize int, logger *zap.SugaredLogger) *Cache {
	return &Cache{
		items:   make(map[string]*cacheEntry),
		maxSize: maxSize,
		logger:  logger,
	}
}

// Resolve loads and caches a texture by path. Returns nil if it cannot be
// decoded; the failure is logged once.
func (c *Cache) Resolve(path string) *image.NRGBA {
	if path == "" {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)
	if err != nil {
		c.logger.Warnw("texture unavailable", "path", path, "error", err)
	} else {
		img = shrink(img, c.maxSize)
	}

	// Write lock with double-check
	c.mu.Lock()
	if entry, exists := c.items[path]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[path] = &cacheEntry{img: img, loaded: true}
	c.mu.Unlock()

	return img
}

// Len returns the number of paths resolved so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
