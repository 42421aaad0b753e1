// Package cache holds the short-lived in-memory read cache for catalog data.
// Catalog reads are heavily repeated while browsing, so the gateway keeps each
// fetch result for a small TTL and drops entries on any product mutation.
package cache

import (
	"context"
	"sync"
	"time"

	"storefront-svc/models"
)

const DefaultTTL = 5 * time.Minute

type listEntry struct {
	products  []models.Product
	fetchedAt time.Time
}

type productEntry struct {
	product   models.Product
	fetchedAt time.Time
}

// ProductCache caches the product list, per-limit featured lists, and
// per-id product details in independent slots. The clock is injectable so
// TTL behavior is testable.
type ProductCache struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	list     *listEntry
	featured map[int]*listEntry
	byID     map[int]*productEntry
}

func NewProductCache(ttl time.Duration, now func() time.Time) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &ProductCache{
		ttl:      ttl,
		now:      now,
		featured: make(map[int]*listEntry),
		byID:     make(map[int]*productEntry),
	}
}

type ListFetchFunc func(ctx context.Context) ([]models.Product, error)

type ProductFetchFunc func(ctx context.Context) (*models.Product, error)

// GetAll returns the cached full product list while fresh, otherwise invokes
// fetch and stores the result. A failed fetch leaves any prior entry in place
// but is never served as a fallback.
func (c *ProductCache) GetAll(ctx context.Context, fetch ListFetchFunc) ([]models.Product, error) {
	c.mu.Lock()
	if c.list != nil && c.now().Sub(c.list.fetchedAt) < c.ttl {
		products := c.list.products
		c.mu.Unlock()
		return products, nil
	}
	c.mu.Unlock()

	products, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.list = &listEntry{products: products, fetchedAt: c.now()}
	c.mu.Unlock()
	return products, nil
}

// GetFeatured caches the server-limited featured list in a slot keyed by
// limit, distinct from the full list.
func (c *ProductCache) GetFeatured(ctx context.Context, limit int, fetch ListFetchFunc) ([]models.Product, error) {
	c.mu.Lock()
	if entry, ok := c.featured[limit]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		products := entry.products
		c.mu.Unlock()
		return products, nil
	}
	c.mu.Unlock()

	products, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.featured[limit] = &listEntry{products: products, fetchedAt: c.now()}
	c.mu.Unlock()
	return products, nil
}

// GetByID caches each product detail independently, so fetching one product
// never invalidates another.
func (c *ProductCache) GetByID(ctx context.Context, id int, fetch ProductFetchFunc) (*models.Product, error) {
	c.mu.Lock()
	if entry, ok := c.byID[id]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		product := entry.product
		c.mu.Unlock()
		return &product, nil
	}
	c.mu.Unlock()

	product, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byID[id] = &productEntry{product: *product, fetchedAt: c.now()}
	c.mu.Unlock()
	return product, nil
}

// InvalidateList drops the full-list slot. Featured slots stay stale on
// purpose: acceptable staleness for the home page rail.
func (c *ProductCache) InvalidateList() {
	c.mu.Lock()
	c.list = nil
	c.mu.Unlock()
}

// InvalidateProduct drops the full-list slot and the slot of the affected id.
func (c *ProductCache) InvalidateProduct(id int) {
	c.mu.Lock()
	c.list = nil
	delete(c.byID, id)
	c.mu.Unlock()
}
