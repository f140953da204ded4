// Package driver defines the storage backend contract every persist
// driver implements, and a process-wide registry drivers register into
// by name. This is the explicit, Go-native replacement for the original
// C implementation's linker-set registration.
package driver

import (
	"fmt"
	"sync"

	"github.com/twoporeguys/libpersist/document"
)

// Config carries the parameters persist.Open passes down to a driver.
type Config struct {
	// Path is the backing file or directory for the driver.
	Path string
	// Params are driver-specific options from Open's params map.
	Params map[string]any
}

// QueryParams controls ordering and pagination of a query. Count is
// carried but not read by the SQL driver's Query, which always yields
// (id, value) rows; match counts come from Driver.Count.
type QueryParams struct {
	Single     bool
	Count      bool
	Descending bool
	SortField  string
	Offset     uint64
	Limit      uint64
}

// Cursor streams the rows of a query, one at a time.
type Cursor interface {
	// Next returns the next (id, value) pair, or ErrDone when the
	// cursor is exhausted.
	Next() (id string, value document.Doc, err error)
	Close() error
}

// ErrDone is returned by Cursor.Next to signal a clean end of stream.
var ErrDone = fmt.Errorf("driver: no more rows")

// BulkSaver is implemented by drivers that can save a batch of documents
// more efficiently than one SaveObject call per element. It is optional:
// callers fall back to looping SaveObject when a driver doesn't provide it.
type BulkSaver interface {
	SaveObjects(collection string, ids []string, values []document.Doc) error
}

// Driver is the contract every storage backend satisfies.
type Driver interface {
	Open(cfg Config) error
	Close() error

	CreateCollection(name string) error
	DestroyCollection(name string) error
	GetCollections() ([]string, error)
	AddIndex(collection, indexName, path string) error
	DropIndex(collection, indexName string) error

	GetObject(collection, id string) (document.Doc, error)
	SaveObject(collection, id string, value document.Doc) error
	DeleteObject(collection, id string) error

	StartTx() error
	CommitTx() error
	RollbackTx() error
	InTx() bool

	Count(collection string, rules []any) (int64, error)
	Query(collection string, rules []any, params *QueryParams) (Cursor, error)
}

// Constructor builds a fresh, unopened Driver instance.
type Constructor func() Driver

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register adds a driver constructor under name. Driver packages call
// this from their own init() function. Registering the same name twice
// panics: it indicates two driver packages were imported for the same
// name, a build-time programming error, not a runtime condition.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("driver: %q already registered", name))
	}
	registry[name] = ctor
}

// Lookup returns the constructor registered under name, if any.
func Lookup(name string) (Constructor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	ctor, ok := registry[name]
	return ctor, ok
}
