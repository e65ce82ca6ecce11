package asset

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the default number of models kept.
const DefaultCacheCapacity = 8

// Cache is a thread-safe LRU cache of decoded models keyed by source path.
// Loaders write from background goroutines while sessions read from the
// frame goroutine.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	lru      *list.List // front = most recently used

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key   string
	model *Model
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewCache creates a cache holding up to capacity models.
// If capacity <= 0, DefaultCacheCapacity is used.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

// Get returns the model for key and marks it recently used.
func (c *Cache) Get(key string) (*Model, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cacheEntry).model, true
}

// Set stores m under key, evicting the least recently used model when full.
func (c *Cache) Set(key string, m *Model) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).model = m
		c.lru.MoveToFront(el)
		return
	}

	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.evictions.Add(1)
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, model: m})
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.lru.Remove(el)
		delete(c.entries, key)
	}
}

// Stats returns a snapshot of cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return CacheStats{
		Len:       n,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
