package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/twoporeguys/libpersist/document"
)

func cmdInsert(args []string) error {
	fs := flag.NewFlagSet("insert", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("insert: usage: insert COLLECTION (document JSON on stdin)")
	}
	collection := rest[0]

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("insert: read stdin: %w", err)
	}

	doc, err := document.Unmarshal(string(body))
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	coll, err := db.CollectionGet(collection, true)
	if err != nil {
		return err
	}

	return coll.Save(doc)
}
