package catalog

import (
	"container/list"
	"sync"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
)

type categoryKey struct {
	tenantID string
	id       int64
}

type cacheEntry struct {
	key      categoryKey
	category *v1.Category
	storedAt time.Time
}

// lruCache is a thread-safe LRU cache of categories with a per-entry TTL.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[categoryKey]*list.Element
	order    *list.List
	now      func() time.Time
}

func newLRUCache(capacity int, ttl time.Duration) *lruCache {
	return &lruCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[categoryKey]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// get returns a copy of a fresh entry, or nil.
func (c *lruCache) get(key categoryKey) *v1.Category {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.entries[key]
	if !exists {
		return nil
	}

	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		c.order.Remove(elem)
		return nil
	}

	c.order.MoveToFront(elem)
	found := *entry.category
	return &found
}

// put adds a category, evicting the least recently used entry when full.
func (c *lruCache) put(category *v1.Category) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := categoryKey{category.TenantID, category.ID}
	stored := *category

	if elem, exists := c.entries[key]; exists {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.category = &stored
		entry.storedAt = c.now()
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.entries, oldest.Value.(*cacheEntry).key)
			c.order.Remove(oldest)
		}
	}

	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, category: &stored, storedAt: c.now()})
}

func (c *lruCache) invalidate(key categoryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.entries[key]; exists {
		delete(c.entries, key)
		c.order.Remove(elem)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
