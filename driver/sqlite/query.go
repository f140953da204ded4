package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/driver"
	"github.com/twoporeguys/libpersist/driver/sqlite/rules"
	"github.com/twoporeguys/libpersist/persisterr"
)

// Count reports how many documents in collection satisfy the rule tree.
func (d *Driver) Count(collection string, tree []any) (int64, error) {
	where, args, err := rules.Compile(tree)
	if err != nil {
		return 0, err
	}

	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", quoteIdent(collection), where)
	d.traceStatement(stmt)

	var n int64
	for attempt := 1; ; attempt++ {
		err := d.execer().QueryRow(stmt, args...).Scan(&n)
		if err == nil {
			return n, nil
		}
		if isRetryable(err) && d.retry.Wait(attempt) {
			continue
		}
		return 0, persisterr.New(persisterr.Internal, "sqlite: count %s: %v", collection, err)
	}
}

// Query runs the rule tree against collection and returns a cursor over
// the matching documents, ordered and paginated per params.
func (d *Driver) Query(collection string, tree []any, params *driver.QueryParams) (driver.Cursor, error) {
	where, args, err := rules.Compile(tree)
	if err != nil {
		return nil, err
	}

	if params == nil {
		params = &driver.QueryParams{}
	}

	limit := params.Limit
	if limit == 0 && !params.Single && d.cfg.DefaultQueryLimit > 0 {
		limit = d.cfg.DefaultQueryLimit
	}

	stmt := fmt.Sprintf("SELECT id, value FROM %s WHERE %s", quoteIdent(collection), where)
	stmt += rules.OrderBy(params.SortField, params.Descending, params.Offset, limit, params.Single)

	d.traceStatement(stmt)

	rows, err := d.queryWithRetry(stmt, args)
	if err != nil {
		return nil, err
	}

	return &cursor{driver: d, collection: collection, rows: rows}, nil
}

func (d *Driver) queryWithRetry(stmt string, args []any) (*sql.Rows, error) {
	for attempt := 1; ; attempt++ {
		rows, err := d.execer().Query(stmt, args...)
		if err == nil {
			return rows, nil
		}
		if isRetryable(err) && d.retry.Wait(attempt) {
			continue
		}
		return nil, persisterr.New(persisterr.Internal, "sqlite: query: %v", err)
	}
}

// cursor adapts *sql.Rows to the driver.Cursor contract.
type cursor struct {
	driver     *Driver
	collection string
	rows       *sql.Rows
}

func (c *cursor) Next() (string, document.Doc, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return "", nil, persisterr.New(persisterr.Internal, "sqlite: cursor: %v", err)
		}
		return "", nil, driver.ErrDone
	}

	var id, value string
	if err := c.rows.Scan(&id, &value); err != nil {
		return "", nil, persisterr.New(persisterr.Internal, "sqlite: cursor scan: %v", err)
	}
	c.driver.traceRow(c.collection, id)

	doc, err := document.Unmarshal(value)
	if err != nil {
		return "", nil, persisterr.New(persisterr.Serialization, "sqlite: cursor unmarshal %s/%s: %v", c.collection, id, err)
	}

	return id, doc, nil
}

func (c *cursor) Close() error {
	return c.rows.Close()
}
