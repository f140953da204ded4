package persist

import (
	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/driver"
	"github.com/twoporeguys/libpersist/persisterr"
)

// Collection is a logical handle on one named collection within a DB. It
// holds no exclusive lock; several Collection values for the same name
// can coexist and are interchangeable.
type Collection struct {
	db   *DB
	name string
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Close marks the handle as released. It does not touch storage: a
// Collection is a logical reference, not a connection.
func (c *Collection) Close() error {
	c.db = nil
	return nil
}

// Get fetches the document stored under id, with "id" populated in the
// returned map.
func (c *Collection) Get(id string) (document.Doc, error) {
	return c.db.drv.GetObject(c.name, id)
}

// Save upserts doc, keyed by its "id" field. doc must carry a non-empty
// string "id"; it is detached before storage and reattached on read.
func (c *Collection) Save(doc document.Doc) error {
	id, rest, err := document.DetachID(doc)
	if err != nil {
		return persisterr.New(persisterr.InvalidArgument, "persist: save: %v", err)
	}
	return c.db.drv.SaveObject(c.name, id, rest)
}

// SaveMany saves every document in docs. Unless the caller already has a
// transaction open, SaveMany wraps the whole batch in one so a failure
// partway through leaves no partial write visible.
func (c *Collection) SaveMany(docs []document.Doc) error {
	ids := make([]string, len(docs))
	values := make([]document.Doc, len(docs))

	for i, doc := range docs {
		id, rest, err := document.DetachID(doc)
		if err != nil {
			return persisterr.New(persisterr.InvalidArgument, "persist: save many: %v", err)
		}
		ids[i] = id
		values[i] = rest
	}

	owned := !c.db.InTransaction()
	if owned {
		if err := c.db.StartTransaction(); err != nil {
			return err
		}
	}

	saveErr := c.saveAll(ids, values)

	if !owned {
		return saveErr
	}
	if saveErr != nil {
		c.db.RollbackTransaction()
		return saveErr
	}
	return c.db.CommitTransaction()
}

func (c *Collection) saveAll(ids []string, values []document.Doc) error {
	if bulk, ok := c.db.drv.(driver.BulkSaver); ok {
		return bulk.SaveObjects(c.name, ids, values)
	}
	for i := range ids {
		if err := c.db.drv.SaveObject(c.name, ids[i], values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes id from the collection. Deleting an id that is already
// absent is not an error.
func (c *Collection) Delete(id string) error {
	return c.db.drv.DeleteObject(c.name, id)
}

// Count reports how many documents satisfy the rule tree.
func (c *Collection) Count(rules []any) (int64, error) {
	return c.db.drv.Count(c.name, rules)
}

// Query runs the rule tree against the collection. If params is nil or
// params.Callback is nil, the caller drives the returned Iterator
// manually. If params.Callback is set, Query drives the cursor itself,
// invoking the callback once per matching document until it returns
// false or the results are exhausted, and returns a nil Iterator.
func (c *Collection) Query(rules []any, params *QueryParams) (*Iterator, error) {
	cur, err := c.db.drv.Query(c.name, rules, toDriverParams(params))
	if err != nil {
		return nil, err
	}
	it := &Iterator{cursor: cur}

	if params == nil || params.Callback == nil {
		return it, nil
	}

	defer it.Close()
	for {
		doc, err := it.Next()
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, nil
		}
		if !params.Callback(doc) {
			return nil, nil
		}
	}
}

func toDriverParams(params *QueryParams) *driver.QueryParams {
	if params == nil {
		return nil
	}
	return &driver.QueryParams{
		Single:     params.Single,
		Count:      params.Count,
		Descending: params.Descending,
		SortField:  params.SortField,
		Offset:     params.Offset,
		Limit:      params.Limit,
	}
}
