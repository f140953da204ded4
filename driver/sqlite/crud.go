package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persisterr"
)

// GetObject fetches the document stored under id in collection. A
// missing row is reported as persisterr.NotFound, not a bare error.
func (d *Driver) GetObject(collection, id string) (document.Doc, error) {
	if doc, ok := d.cache.Get(collection, id); ok {
		return doc, nil
	}

	entry, err := d.stmts.getOrCreate(d.db, collection)
	if err != nil {
		return nil, persisterr.New(persisterr.Internal, "%v", err)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	stmt, err := d.stmtFor(entry, func(s *stmtSet) *sql.Stmt { return s.get })
	if err != nil {
		return nil, persisterr.New(persisterr.Internal, "%v", err)
	}

	for attempt := 1; ; attempt++ {
		d.traceStatement(fmt.Sprintf("SELECT id, value FROM %s WHERE id = %q", collection, id))

		var gotID, value string
		err := stmt.QueryRow(id).Scan(&gotID, &value)

		switch {
		case err == sql.ErrNoRows:
			return nil, persisterr.New(persisterr.NotFound, "sqlite: %s/%s: not found", collection, id)

		case err != nil:
			if isRetryable(err) && d.retry.Wait(attempt) {
				continue
			}
			return nil, persisterr.New(persisterr.Internal, "sqlite: get %s/%s: %v", collection, id, err)

		default:
			d.traceRow(collection, gotID)

			doc, perr := document.Unmarshal(value)
			if perr != nil {
				return nil, persisterr.New(persisterr.Serialization, "sqlite: get %s/%s: %v", collection, id, perr)
			}

			result := document.WithID(gotID, doc)
			d.cache.Put(collection, gotID, result)
			return result, nil
		}
	}
}

// SaveObject upserts value under id in collection: a document written
// with an existing id replaces the prior payload atomically.
func (d *Driver) SaveObject(collection, id string, value document.Doc) error {
	payload, err := document.Marshal(value)
	if err != nil {
		return persisterr.New(persisterr.Serialization, "sqlite: save %s/%s: %v", collection, id, err)
	}

	entry, err := d.stmts.getOrCreate(d.db, collection)
	if err != nil {
		return persisterr.New(persisterr.Internal, "%v", err)
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	stmt, err := d.stmtFor(entry, func(s *stmtSet) *sql.Stmt { return s.upsert })
	if err != nil {
		return persisterr.New(persisterr.Internal, "%v", err)
	}

	for attempt := 1; ; attempt++ {
		d.traceStatement(fmt.Sprintf("INSERT OR REPLACE INTO %s (id, value) VALUES (%q, ...)", collection, id))

		_, err := stmt.Exec(id, payload)
		if err == nil {
			break
		}
		if isRetryable(err) && d.retry.Wait(attempt) {
			continue
		}
		return persisterr.New(persisterr.Internal, "sqlite: save %s/%s: %v", collection, id, err)
	}

	d.cache.Invalidate(collection, id)
	return nil
}

// SaveObjects saves every (id, value) pair, stopping at the first
// failure. It implements driver.BulkSaver so the façade's SaveMany can
// use it directly instead of looping SaveObject itself.
func (d *Driver) SaveObjects(collection string, ids []string, values []document.Doc) error {
	for i, id := range ids {
		if err := d.SaveObject(collection, id, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteObject removes id from collection. Deleting an id that was
// already absent is not an error: zero rows affected is still success.
func (d *Driver) DeleteObject(collection, id string) error {
	entry, err := d.stmts.getOrCreate(d.db, collection)
	if err != nil {
		return persisterr.New(persisterr.Internal, "%v", err)
	}

	writeMu.Lock()
	defer writeMu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	stmt, err := d.stmtFor(entry, func(s *stmtSet) *sql.Stmt { return s.del })
	if err != nil {
		return persisterr.New(persisterr.Internal, "%v", err)
	}

	for attempt := 1; ; attempt++ {
		d.traceStatement(fmt.Sprintf("DELETE FROM %s WHERE id = %q", collection, id))

		_, err := stmt.Exec(id)
		if err == nil {
			break
		}
		if isRetryable(err) && d.retry.Wait(attempt) {
			continue
		}
		return persisterr.New(persisterr.Internal, "sqlite: delete %s/%s: %v", collection, id, err)
	}

	d.cache.Invalidate(collection, id)
	return nil
}

func (d *Driver) traceStatement(sql string) {
	if d.tracer != nil {
		d.tracer.OnStatement(sql)
	}
}

func (d *Driver) traceRow(table, id string) {
	if d.tracer != nil {
		d.tracer.OnRow(table, id)
	}
}
