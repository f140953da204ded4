package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/driver"
	"github.com/twoporeguys/libpersist/persisterr"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()

	d := &Driver{}
	path := filepath.Join(t.TempDir(), "test.db")
	if err := d.Open(driver.Config{Path: path}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := d.CreateCollection("users"); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	return d
}

func TestRegistered(t *testing.T) {
	if _, ok := driver.Lookup("sqlite"); !ok {
		t.Fatal(`driver.Lookup("sqlite") failed after importing driver/sqlite`)
	}
}

func TestCreateCollectionIdempotent(t *testing.T) {
	d := newTestDriver(t)
	if err := d.CreateCollection("users"); err != nil {
		t.Fatalf("second CreateCollection should be a no-op, got: %v", err)
	}
}

func TestGetCollections(t *testing.T) {
	d := newTestDriver(t)
	if err := d.CreateCollection("orders"); err != nil {
		t.Fatal(err)
	}

	names, err := d.GetCollections()
	if err != nil {
		t.Fatalf("GetCollections: %v", err)
	}

	want := map[string]bool{"users": false, "orders": false}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, found := range want {
		if !found {
			t.Errorf("collection %q missing from GetCollections: %v", n, names)
		}
	}
}

func TestGetObjectNotFound(t *testing.T) {
	d := newTestDriver(t)

	_, err := d.GetObject("users", "missing")
	var perr *persisterr.Error
	if !errors.As(err, &perr) || perr.Code != persisterr.NotFound {
		t.Fatalf("expected persisterr.NotFound, got %v", err)
	}
}

func TestSaveGetRoundTrip(t *testing.T) {
	d := newTestDriver(t)

	doc := document.Doc{"name": "ada", "age": float64(36)}
	if err := d.SaveObject("users", "u1", doc); err != nil {
		t.Fatalf("SaveObject: %v", err)
	}

	got, err := d.GetObject("users", "u1")
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	if got["name"] != "ada" || got["age"] != float64(36) {
		t.Errorf("got %v", got)
	}
	if got["id"] != "u1" {
		t.Errorf("GetObject should reattach id, got %v", got["id"])
	}
}

func TestSaveObjectUpsertsExisting(t *testing.T) {
	d := newTestDriver(t)

	if err := d.SaveObject("users", "u1", document.Doc{"name": "ada"}); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveObject("users", "u1", document.Doc{"name": "grace"}); err != nil {
		t.Fatal(err)
	}

	got, err := d.GetObject("users", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got["name"] != "grace" {
		t.Errorf("expected upsert to replace payload, got %v", got["name"])
	}

	n, err := d.Count("users", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("upsert of an existing id should not duplicate rows, Count = %d", n)
	}
}

func TestDeleteAbsentIsNotError(t *testing.T) {
	d := newTestDriver(t)
	if err := d.DeleteObject("users", "nobody"); err != nil {
		t.Errorf("deleting an absent id should succeed, got %v", err)
	}
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	d := newTestDriver(t)
	if err := d.SaveObject("users", "u1", document.Doc{"name": "ada"}); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteObject("users", "u1"); err != nil {
		t.Fatal(err)
	}

	_, err := d.GetObject("users", "u1")
	var perr *persisterr.Error
	if !errors.As(err, &perr) || perr.Code != persisterr.NotFound {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
}

func TestQueryFiltersAndOrders(t *testing.T) {
	d := newTestDriver(t)

	people := []struct {
		id  string
		age float64
	}{
		{"u1", 18}, {"u2", 25}, {"u3", 40},
	}
	for _, p := range people {
		if err := d.SaveObject("users", p.id, document.Doc{"age": p.age}); err != nil {
			t.Fatal(err)
		}
	}

	tree := []any{[]any{"age", ">=", float64(20)}}
	cur, err := d.Query("users", tree, &driver.QueryParams{SortField: "age"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer cur.Close()

	var ids []string
	for {
		id, _, err := cur.Next()
		if err == driver.ErrDone {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		ids = append(ids, id)
	}

	if len(ids) != 2 || ids[0] != "u2" || ids[1] != "u3" {
		t.Errorf("ids = %v, want [u2 u3] ascending by age", ids)
	}
}

func TestQueryStringEqualityMatches(t *testing.T) {
	d := newTestDriver(t)

	people := []struct{ id, name string }{
		{"u1", "Ann"}, {"u2", "Bob"}, {"u3", "Ann"},
	}
	for _, p := range people {
		if err := d.SaveObject("users", p.id, document.Doc{"name": p.name}); err != nil {
			t.Fatal(err)
		}
	}

	tree := []any{[]any{"name", "=", "Ann"}}
	n, err := d.Count("users", tree)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	// Regression: splicing the literal as unquoted SQL text makes SQLite's
	// double-quote compatibility fallback strip the JSON quoting, so a
	// string equality predicate never matches and this would read 0.
	if n != 2 {
		t.Errorf("Count(name = \"Ann\") = %d, want 2", n)
	}

	cur, err := d.Query("users", tree, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer cur.Close()

	var got int
	for {
		_, doc, err := cur.Next()
		if err == driver.ErrDone {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if doc["name"] != "Ann" {
			t.Errorf("Query(name = \"Ann\") returned %v", doc)
		}
		got++
	}
	if got != 2 {
		t.Errorf("Query(name = \"Ann\") returned %d rows, want 2", got)
	}
}

func TestQueryRegexpOperator(t *testing.T) {
	d := newTestDriver(t)

	for _, name := range []string{"Ann", "Andrea", "Bob"} {
		if err := d.SaveObject("users", name, document.Doc{"name": name}); err != nil {
			t.Fatal(err)
		}
	}

	tree := []any{[]any{"name", "~", "^An"}}
	n, err := d.Count("users", tree)
	if err != nil {
		t.Fatalf("Count with ~ operator: %v", err)
	}
	if n != 2 {
		t.Errorf("Count(name ~ \"^An\") = %d, want 2 (Ann, Andrea)", n)
	}
}

func TestQueryAppliesDefaultQueryLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	d := &Driver{}
	if err := d.Open(driver.Config{Path: path, Params: map[string]any{"default_query_limit": 2}}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if err := d.CreateCollection("users"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		if err := d.SaveObject("users", id, document.Doc{"n": float64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	cur, err := d.Query("users", nil, nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	defer cur.Close()

	var got int
	for {
		_, _, err := cur.Next()
		if err == driver.ErrDone {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		got++
	}
	if got != 2 {
		t.Errorf("Query with no explicit Limit returned %d rows, want the configured default_query_limit of 2", got)
	}
}

func TestCountMatchesQueryLength(t *testing.T) {
	d := newTestDriver(t)
	for i := 0; i < 5; i++ {
		if err := d.SaveObject("users", string(rune('a'+i)), document.Doc{"n": float64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := d.Count("users", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("Count = %d, want 5", n)
	}
}

func TestTransactionCommit(t *testing.T) {
	d := newTestDriver(t)

	if err := d.StartTx(); err != nil {
		t.Fatalf("StartTx: %v", err)
	}
	if !d.InTx() {
		t.Fatal("InTx should be true after StartTx")
	}
	if err := d.SaveObject("users", "u1", document.Doc{"name": "ada"}); err != nil {
		t.Fatal(err)
	}
	if err := d.CommitTx(); err != nil {
		t.Fatalf("CommitTx: %v", err)
	}
	if d.InTx() {
		t.Fatal("InTx should be false after CommitTx")
	}

	if _, err := d.GetObject("users", "u1"); err != nil {
		t.Errorf("committed write should be visible, got %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	d := newTestDriver(t)

	if err := d.StartTx(); err != nil {
		t.Fatal(err)
	}
	if err := d.SaveObject("users", "u1", document.Doc{"name": "ada"}); err != nil {
		t.Fatal(err)
	}
	if err := d.RollbackTx(); err != nil {
		t.Fatalf("RollbackTx: %v", err)
	}

	var perr *persisterr.Error
	_, err := d.GetObject("users", "u1")
	if !errors.As(err, &perr) || perr.Code != persisterr.NotFound {
		t.Errorf("rolled-back write should not be visible, got %v", err)
	}
}

func TestDoubleStartTxIsConflict(t *testing.T) {
	d := newTestDriver(t)

	if err := d.StartTx(); err != nil {
		t.Fatal(err)
	}
	defer d.RollbackTx()

	var perr *persisterr.Error
	err := d.StartTx()
	if !errors.As(err, &perr) || perr.Code != persisterr.Conflict {
		t.Fatalf("expected persisterr.Conflict on double StartTx, got %v", err)
	}
}

func TestDestroyCollectionRemovesIt(t *testing.T) {
	d := newTestDriver(t)
	if err := d.SaveObject("users", "u1", document.Doc{"name": "ada"}); err != nil {
		t.Fatal(err)
	}

	if err := d.DestroyCollection("users"); err != nil {
		t.Fatalf("DestroyCollection: %v", err)
	}

	names, err := d.GetCollections()
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		if n == "users" {
			t.Fatal("users should be gone after DestroyCollection")
		}
	}
}

func TestAddIndexThenDropIndex(t *testing.T) {
	d := newTestDriver(t)
	if err := d.AddIndex("users", "by_age", "age"); err != nil {
		t.Fatalf("AddIndex: %v", err)
	}
	if err := d.DropIndex("users", "by_age"); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
}

func TestIndexDoesNotChangeQueryResults(t *testing.T) {
	d := newTestDriver(t)
	for i := 0; i < 10; i++ {
		if err := d.SaveObject("users", string(rune('a'+i)), document.Doc{"age": float64(i)}); err != nil {
			t.Fatal(err)
		}
	}

	tree := []any{[]any{"age", ">", float64(5)}}

	before, err := d.Count("users", tree)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.AddIndex("users", "by_age", "age"); err != nil {
		t.Fatal(err)
	}

	after, err := d.Count("users", tree)
	if err != nil {
		t.Fatal(err)
	}

	if before != after {
		t.Errorf("adding an index changed the result count: before=%d after=%d", before, after)
	}
}
