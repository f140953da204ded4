package persist

import (
	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/driver"
)

// QueryParams controls ordering, pagination, and optional push-style
// delivery of a Collection.Query call.
type QueryParams struct {
	Single     bool
	Count      bool
	Descending bool
	SortField  string
	Offset     uint64
	Limit      uint64
	// Callback, if set, is invoked once per matching document instead of
	// requiring the caller to drive an Iterator; returning false stops
	// the query early.
	Callback func(doc document.Doc) bool
}

// Iterator streams the results of a Collection.Query call. It is a
// single forward pass over its originating query; it is not restartable.
type Iterator struct {
	cursor driver.Cursor
	closed bool
}

// Next returns the next matching document, (nil, nil) when the results
// are exhausted, or (nil, err) on failure.
func (it *Iterator) Next() (document.Doc, error) {
	id, doc, err := it.cursor.Next()
	if err == driver.ErrDone {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return document.WithID(id, doc), nil
}

// Close releases the iterator's underlying cursor. Calling it more than
// once is harmless.
func (it *Iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.cursor.Close()
}
