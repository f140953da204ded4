package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
)

// stmtSet is the per-collection trio of reusable prepared statements.
type stmtSet struct {
	get    *sql.Stmt
	upsert *sql.Stmt
	del    *sql.Stmt
}

func (s *stmtSet) close() {
	s.get.Close()
	s.upsert.Close()
	s.del.Close()
}

// stmtCache maps collection name to its prepared statement trio. Lookup
// and insertion are guarded by mu; bind/step/reset of a given entry's
// statements is additionally serialized by that same entry's own
// sync.Mutex, so unrelated collections never contend with each other.
type stmtCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	mu sync.Mutex
	stmtSet
}

func newStmtCache() *stmtCache {
	return &stmtCache{entries: map[string]*cacheEntry{}}
}

// getOrCreate returns the cached entry for collection, preparing its
// three statements against db on first access. Failed preparation never
// leaves a half-populated entry in the cache.
func (c *stmtCache) getOrCreate(db *sql.DB, collection string) (*cacheEntry, error) {
	c.mu.Lock()
	if e, ok := c.entries[collection]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	get, err := db.Prepare(fmt.Sprintf(sqlGet, quoteIdent(collection)))
	if err != nil {
		return nil, fmt.Errorf("sqlite: prepare get for %q: %w", collection, err)
	}

	upsert, err := db.Prepare(fmt.Sprintf(sqlUpsert, quoteIdent(collection)))
	if err != nil {
		get.Close()
		return nil, fmt.Errorf("sqlite: prepare upsert for %q: %w", collection, err)
	}

	del, err := db.Prepare(fmt.Sprintf(sqlDelete, quoteIdent(collection)))
	if err != nil {
		get.Close()
		upsert.Close()
		return nil, fmt.Errorf("sqlite: prepare delete for %q: %w", collection, err)
	}

	entry := &cacheEntry{stmtSet: stmtSet{get: get, upsert: upsert, del: del}}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have raced us; prefer the one already
	// installed and close our duplicate rather than leak it.
	if e, ok := c.entries[collection]; ok {
		entry.close()
		return e, nil
	}

	c.entries[collection] = entry
	return entry, nil
}

// evict finalizes and removes the cache entry for collection, if any.
func (c *stmtCache) evict(collection string) {
	c.mu.Lock()
	e, ok := c.entries[collection]
	if ok {
		delete(c.entries, collection)
	}
	c.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.close()
		e.mu.Unlock()
	}
}

// closeAll finalizes every cached statement, called when the driver closes.
func (c *stmtCache) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for name, e := range c.entries {
		e.close()
		delete(c.entries, name)
	}
}
