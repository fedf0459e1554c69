// Package catalog looks up the categories finance document lines point at.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/ledgerline/reportsync/internal/api/v1"
	"github.com/ledgerline/reportsync/internal/core/storage"
)

const (
	DefaultCacheCapacity = 1000
	DefaultCacheTTL      = 5 * time.Minute
)

// Catalog resolves categories by id. FindByID goes through an LRU cache in front of the store and
// serves read paths; Lookup always asks the store and is what document generation uses.
// Only found categories are cached, so a newly created category is visible immediately.
type Catalog struct {
	store storage.CategoryStore
	cache *lruCache
}

func New(store storage.CategoryStore, cacheCapacity int, ttl time.Duration) *Catalog {
	if cacheCapacity < 0 {
		cacheCapacity = DefaultCacheCapacity
	}
	return &Catalog{
		store: store,
		cache: newLRUCache(cacheCapacity, ttl),
	}
}

// FindByID returns (nil, false, nil) for a category that does not exist or was archived.
func (c *Catalog) FindByID(ctx context.Context, tenantID string, id int64) (*v1.Category, bool, error) {
	key := categoryKey{tenantID, id}
	if category := c.cache.get(key); category != nil {
		return category, true, nil
	}

	category, err := c.store.GetCategory(ctx, tenantID, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up category %d: %w", id, err)
	}

	c.cache.put(category)
	return category, true, nil
}

// Lookup reads the given ids from the store in one call, bypassing the cache, and returns the live
// categories keyed by id. Missing ids are absent from the map. The cache is refreshed with the
// result, so a category archived since it was cached stops being served by FindByID as well.
func (c *Catalog) Lookup(ctx context.Context, tenantID string, ids []int64) (map[int64]*v1.Category, error) {
	out := make(map[int64]*v1.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	found, err := c.store.GetCategories(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %d categories: %w", len(ids), err)
	}
	for _, category := range found {
		out[category.ID] = category
		c.cache.put(category)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			c.cache.invalidate(categoryKey{tenantID, id})
		}
	}
	return out, nil
}
