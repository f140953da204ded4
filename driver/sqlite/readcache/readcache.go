// Package readcache provides a bounded, per-collection read-through
// cache for GetObject, invalidated on writes. It exists to give the
// hashicorp/golang-lru dependency a direct, exercised home in the SQL
// driver rather than the transitive-only role it plays upstream.
package readcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/twoporeguys/libpersist/document"
)

// key identifies a cached document by collection and id.
type key struct {
	collection string
	id         string
}

// Cache holds recently read documents, keyed by (collection, id).
type Cache struct {
	lru *lru.Cache[key, document.Doc]
}

// New builds a cache holding up to size documents. size <= 0 disables
// caching: Get always misses and Put is a no-op.
func New(size int) *Cache {
	if size <= 0 {
		return &Cache{}
	}

	l, err := lru.New[key, document.Doc](size)
	if err != nil {
		// Only returned by golang-lru for size <= 0, already excluded above.
		panic(err)
	}

	return &Cache{lru: l}
}

// Get returns the cached document for (collection, id), if present.
func (c *Cache) Get(collection, id string) (document.Doc, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key{collection, id})
}

// Put caches doc under (collection, id).
func (c *Cache) Put(collection, id string, doc document.Doc) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key{collection, id}, doc)
}

// Invalidate evicts (collection, id), called after SaveObject or
// DeleteObject commits.
func (c *Cache) Invalidate(collection, id string) {
	if c.lru == nil {
		return
	}
	c.lru.Remove(key{collection, id})
}

// InvalidateCollection evicts every cached entry for collection, called
// when the collection itself is destroyed.
func (c *Cache) InvalidateCollection(collection string) {
	if c.lru == nil {
		return
	}
	for _, k := range c.lru.Keys() {
		if k.collection == collection {
			c.lru.Remove(k)
		}
	}
}
