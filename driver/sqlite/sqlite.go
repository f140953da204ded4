// Package sqlite is the reference persist driver: it maps collections
// onto tables in a local SQLite file, documents onto a JSON value
// column, and registers itself under the name "sqlite".
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite" // pure-Go SQLite engine, no cgo

	"github.com/twoporeguys/libpersist/driver"
	"github.com/twoporeguys/libpersist/driver/sqlite/readcache"
	"github.com/twoporeguys/libpersist/driver/sqlite/retry"
	"github.com/twoporeguys/libpersist/internal/config"
	"github.com/twoporeguys/libpersist/internal/logging"
)

func init() {
	driver.Register("sqlite", func() driver.Driver { return &Driver{} })

	if err := registerRegexp(); err != nil {
		panic(fmt.Sprintf("sqlite: register regexp function: %v", err))
	}
}

// writeMu is the process-wide write mutex the spec calls for: it guards
// BEGIN, COMMIT, and every individual write step (SaveObject,
// DeleteObject), never the full duration of a transaction, so a
// transaction's internal writes don't deadlock against themselves.
var writeMu sync.Mutex

// Driver is the reference SQLite-backed persist.Driver implementation.
type Driver struct {
	db     *sql.DB
	path   string
	cfg    config.Config
	stmts  *stmtCache
	cache  *readcache.Cache
	tracer logging.Tracer
	retry  retry.Policy

	txMu sync.Mutex
	tx   *sql.Tx
}

// Open establishes the connection, enables WAL mode and shared cache,
// and installs a stderr tracer if LIBPERSIST_LOGGING=stderr is set.
// Failure to enable the shared cache is fatal: it indicates a
// misconfigured build of the pure-Go SQLite engine.
func (d *Driver) Open(cfg driver.Config) error {
	d.path = cfg.Path

	resolved, err := config.FromSidecar(config.FromParams(config.Default(), cfg.Params), cfg.Path)
	if err != nil {
		return fmt.Errorf("sqlite: load sidecar config: %w", err)
	}
	d.cfg = resolved

	dsn := cfg.Path + "?cache=shared&_pragma=busy_timeout(0)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	// A shared-cache engine serializes writers across connections in
	// this process; it is the premise the write mutex and retry loop
	// are built on, so failing to enable it is unrecoverable here.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		panic(fmt.Sprintf("sqlite: cannot enable shared cache / WAL for %s: %v", cfg.Path, err))
	}
	if _, err := db.Exec("PRAGMA synchronous=OFF"); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: cannot configure synchronous mode for %s: %w", cfg.Path, err)
	}

	d.db = db
	d.stmts = newStmtCache()
	d.cache = readcache.New(resolved.ReadCacheSize)
	d.tracer = logging.FromEnv(cfg.Path)
	d.retry = retry.Default()

	return nil
}

// Close finalizes every cached statement and releases the connection.
func (d *Driver) Close() error {
	if d.stmts != nil {
		d.stmts.closeAll()
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// SetRetryPolicy overrides the default unbounded busy/locked retry
// policy, for tests that want bounded-attempt behavior instead of
// the production default.
func (d *Driver) SetRetryPolicy(p retry.Policy) {
	d.retry = p
}

// execer is the common executor surface of *sql.DB and *sql.Tx; the
// execer method returns the active *sql.Tx or the *sql.DB, so callers
// don't need to branch on transaction state.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (d *Driver) execer() execer {
	d.txMu.Lock()
	defer d.txMu.Unlock()
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

// stmtFor returns the collection's cached statement, rebound to the
// active transaction if one is open.
func (d *Driver) stmtFor(entry *cacheEntry, which func(*stmtSet) *sql.Stmt) (*sql.Stmt, error) {
	d.txMu.Lock()
	tx := d.tx
	d.txMu.Unlock()

	stmt := which(&entry.stmtSet)
	if tx == nil {
		return stmt, nil
	}
	return tx.Stmt(stmt), nil
}
