package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persist"
)

func cmdQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	limit := fs.Uint64("limit", 0, "maximum rows to return (0 = unlimited)")
	offset := fs.Uint64("offset", 0, "rows to skip")
	sortField := fs.String("sort", "", "field to sort by")
	desc := fs.Bool("desc", false, "sort descending")
	count := fs.Bool("count", false, "print only the match count")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("query: COLLECTION is required")
	}
	collection, filters := rest[0], rest[1:]

	tree, err := parseFilters(filters)
	if err != nil {
		return err
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	coll, err := db.CollectionGet(collection, false)
	if err != nil {
		return err
	}

	if *count {
		n, err := coll.Count(tree)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}

	params := &persist.QueryParams{
		SortField:  *sortField,
		Descending: *desc,
		Offset:     *offset,
		Limit:      *limit,
	}

	it, err := coll.Query(tree, params)
	if err != nil {
		return err
	}
	defer it.Close()

	var docs []document.Doc
	for {
		doc, err := it.Next()
		if err != nil {
			return err
		}
		if doc == nil {
			break
		}
		docs = append(docs, doc)
	}

	return printDocs(gf.format, docs)
}

// parseFilters turns a list of "field=value" strings into an implicitly
// and-joined rule tree of equality predicates. A value that parses as a
// JSON scalar (number, bool, null) is compared as that scalar; anything
// else is compared as a string.
func parseFilters(filters []string) ([]any, error) {
	var tree []any
	for _, f := range filters {
		field, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", f)
		}
		tree = append(tree, []any{field, "=", parseScalar(value)})
	}
	return tree, nil
}

func parseScalar(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
