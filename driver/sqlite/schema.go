package sqlite

import (
	"fmt"

	"github.com/twoporeguys/libpersist/persisterr"
)

// CreateCollection creates the backing table if absent. It is
// idempotent: calling it on an already-existing collection succeeds.
func (d *Driver) CreateCollection(name string) error {
	_, err := d.db.Exec(fmt.Sprintf(sqlCreateTable, quoteIdent(name)))
	if err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: create collection %q: %v", name, err)
	}
	return nil
}

// DestroyCollection drops the backing table and evicts any cached
// prepared statements for it.
func (d *Driver) DestroyCollection(name string) error {
	_, err := d.db.Exec(fmt.Sprintf(sqlDropTable, quoteIdent(name)))
	if err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: destroy collection %q: %v", name, err)
	}

	d.stmts.evict(name)
	d.cache.InvalidateCollection(name)
	return nil
}

// GetCollections lists every physical table the driver manages,
// including the reserved __collections catalog table.
func (d *Driver) GetCollections() ([]string, error) {
	rows, err := d.db.Query(sqlListTables)
	if err != nil {
		return nil, persisterr.New(persisterr.Internal, "sqlite: list collections: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, persisterr.New(persisterr.Internal, "sqlite: scan collection name: %v", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, persisterr.New(persisterr.Internal, "sqlite: list collections: %v", err)
	}

	return names, nil
}

// AddIndex creates a secondary index over json_quote(json_extract(value,
// '$.<path>')) for collection, named "<collection>_<indexName>".
func (d *Driver) AddIndex(collection, indexName, path string) error {
	full := collection + "_" + indexName
	stmt := fmt.Sprintf(sqlCreateIndex, quoteIdent(full), quoteIdent(collection), path)

	if _, err := d.db.Exec(stmt); err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: add index %q on %q: %v", indexName, collection, err)
	}
	return nil
}

// DropIndex removes the named secondary index.
func (d *Driver) DropIndex(collection, indexName string) error {
	full := collection + "_" + indexName
	if _, err := d.db.Exec(fmt.Sprintf(sqlDropIndex, quoteIdent(full))); err != nil {
		return persisterr.New(persisterr.Internal, "sqlite: drop index %q on %q: %v", indexName, collection, err)
	}
	return nil
}
