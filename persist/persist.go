// Package persist is the embeddable document-store façade: it opens a
// named driver, bootstraps the collection catalog, and exposes
// collection/document/query/transaction operations over it.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/driver"
	_ "github.com/twoporeguys/libpersist/driver/sqlite" // register "sqlite"
	"github.com/twoporeguys/libpersist/internal/config"
	"github.com/twoporeguys/libpersist/internal/watch"
	"github.com/twoporeguys/libpersist/persisterr"
)

// catalogCollection is the reserved collection the façade bootstraps on
// every Open, holding one row per user collection.
const catalogCollection = "__collections"

// catalogEntry is the shape of a row in catalogCollection.
type catalogEntry struct {
	CreatedAt  time.Time      `json:"created_at"`
	Migrations []string       `json:"migrations"`
	Metadata   map[string]any `json:"metadata"`
}

// DB is an open document store. It is safe for concurrent use by
// multiple goroutines: every method either delegates to the driver
// (which owns its own locking) or only touches db's own mutex-guarded
// bookkeeping.
type DB struct {
	path       string
	driverName string
	drv        driver.Driver
	ctx        context.Context

	mu       sync.Mutex
	onChange []func()
	watcher  *watch.Watcher
}

// Option customizes Open.
type Option func(*DB)

// WithContext replaces the context.Background() default stored on the
// DB. The stored context is not passed to the driver: no driver or
// database/sql call uses it, so it does not apply deadlines or
// cancellation to any operation.
func WithContext(ctx context.Context) Option {
	return func(db *DB) { db.ctx = ctx }
}

// Open opens (creating if necessary) the database at path using the
// driver registered under driverName, and ensures the collection catalog
// exists.
func Open(path, driverName string, params map[string]any, opts ...Option) (*DB, error) {
	ctor, ok := driver.Lookup(driverName)
	if !ok {
		return nil, persisterr.New(persisterr.NotFound, "persist: unknown driver %q", driverName)
	}

	drv := ctor()
	if err := drv.Open(driver.Config{Path: path, Params: params}); err != nil {
		return nil, err
	}

	db := &DB{
		path:       path,
		driverName: driverName,
		drv:        drv,
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(db)
	}

	if err := drv.CreateCollection(catalogCollection); err != nil {
		drv.Close()
		return nil, err
	}

	return db, nil
}

// Close releases the database's driver connection and stops any
// sidecar-config watch started by OnConfigChange.
func (db *DB) Close() error {
	db.mu.Lock()
	w := db.watcher
	db.watcher = nil
	db.mu.Unlock()

	if w != nil {
		w.Close()
	}
	return db.drv.Close()
}

// createCollection creates collection's backing storage (idempotent) and,
// unless it is the catalog itself, inserts its catalog row if one isn't
// already present.
func (db *DB) createCollection(name string) error {
	if err := db.drv.CreateCollection(name); err != nil {
		return err
	}
	if name == catalogCollection {
		return nil
	}

	_, err := db.drv.GetObject(catalogCollection, name)
	if err == nil {
		return nil
	}

	var perr *persisterr.Error
	if !errors.As(err, &perr) || perr.Code != persisterr.NotFound {
		return err
	}

	entry := catalogEntry{
		CreatedAt:  time.Now().UTC(),
		Migrations: []string{},
		Metadata:   map[string]any{},
	}
	row, merr := toDoc(entry)
	if merr != nil {
		return persisterr.New(persisterr.Serialization, "persist: encode catalog row for %q: %v", name, merr)
	}

	return db.drv.SaveObject(catalogCollection, name, row)
}

// CollectionExists reports whether name has a backing table, regardless
// of whether it is catalogued (the catalog itself always reports true).
func (db *DB) CollectionExists(name string) bool {
	names, err := db.drv.GetCollections()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// CollectionGet returns a handle to collection name. If it does not
// exist and create is false, this is persisterr.NotFound; if create is
// true the collection (and its catalog row) is created.
func (db *DB) CollectionGet(name string, create bool) (*Collection, error) {
	if !db.CollectionExists(name) {
		if !create {
			return nil, persisterr.New(persisterr.NotFound, "persist: collection %q does not exist", name)
		}
		if err := db.createCollection(name); err != nil {
			return nil, err
		}
	}
	return &Collection{db: db, name: name}, nil
}

// CollectionRemove drops collection name's backing table and its catalog
// row. Removing the catalog itself is refused.
func (db *DB) CollectionRemove(name string) error {
	if name == catalogCollection {
		return persisterr.New(persisterr.InvalidArgument, "persist: cannot remove the reserved collection %q", catalogCollection)
	}

	if err := db.drv.DestroyCollection(name); err != nil {
		return err
	}

	err := db.drv.DeleteObject(catalogCollection, name)
	if err != nil {
		var perr *persisterr.Error
		if errors.As(err, &perr) && perr.Code == persisterr.NotFound {
			return nil
		}
		return err
	}
	return nil
}

// CollectionGetMetadata returns the caller-set metadata map for
// collection name.
func (db *DB) CollectionGetMetadata(name string) (map[string]any, error) {
	entry, err := db.catalogEntry(name)
	if err != nil {
		return nil, err
	}
	return entry.Metadata, nil
}

// CollectionSetMetadata replaces collection name's metadata map, leaving
// created_at and migrations untouched.
func (db *DB) CollectionSetMetadata(name string, md map[string]any) error {
	entry, err := db.catalogEntry(name)
	if err != nil {
		return err
	}
	entry.Metadata = md

	row, merr := toDoc(entry)
	if merr != nil {
		return persisterr.New(persisterr.Serialization, "persist: encode catalog row for %q: %v", name, merr)
	}
	return db.drv.SaveObject(catalogCollection, name, row)
}

func (db *DB) catalogEntry(name string) (catalogEntry, error) {
	raw, err := db.drv.GetObject(catalogCollection, name)
	if err != nil {
		return catalogEntry{}, err
	}

	var entry catalogEntry
	if err := fromDoc(raw, &entry); err != nil {
		return catalogEntry{}, persisterr.New(persisterr.Serialization, "persist: decode catalog row for %q: %v", name, err)
	}
	return entry, nil
}

// CollectionsApply calls fn once for every user collection (the catalog
// itself is not included), in no particular order, stopping early if fn
// returns false.
func (db *DB) CollectionsApply(fn func(name string) bool) {
	names, err := db.drv.GetCollections()
	if err != nil {
		return
	}
	for _, name := range names {
		if name == catalogCollection {
			continue
		}
		if !fn(name) {
			return
		}
	}
}

// StartTransaction opens a transaction spanning subsequent Save/Delete/
// Query calls on this DB until CommitTransaction or RollbackTransaction.
func (db *DB) StartTransaction() error { return db.drv.StartTx() }

// CommitTransaction commits the open transaction.
func (db *DB) CommitTransaction() error { return db.drv.CommitTx() }

// RollbackTransaction discards the open transaction's writes.
func (db *DB) RollbackTransaction() error { return db.drv.RollbackTx() }

// InTransaction reports whether a transaction is currently open.
func (db *DB) InTransaction() bool { return db.drv.InTx() }

// OnConfigChange registers fn to run whenever the database's sidecar
// persist.json file changes on disk. The first call lazily starts the
// underlying filesystem watch.
func (db *DB) OnConfigChange(fn func()) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.onChange = append(db.onChange, fn)
	if db.watcher != nil {
		return nil
	}

	sidecar := filepath.Join(filepath.Dir(db.path), config.SidecarFile)
	w, err := watch.File(sidecar, db.fireConfigChange)
	if err != nil {
		return err
	}
	db.watcher = w
	return nil
}

func (db *DB) fireConfigChange() {
	db.mu.Lock()
	fns := append([]func(){}, db.onChange...)
	db.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func toDoc(entry catalogEntry) (document.Doc, error) {
	buf, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return document.Unmarshal(string(buf))
}

func fromDoc(doc document.Doc, entry *catalogEntry) error {
	buf, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, entry)
}
