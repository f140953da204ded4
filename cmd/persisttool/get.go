package main

import (
	"flag"
	"fmt"
)

func cmdGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("get: usage: get COLLECTION ID")
	}
	collection, id := rest[0], rest[1]

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	coll, err := db.CollectionGet(collection, false)
	if err != nil {
		return err
	}

	doc, err := coll.Get(id)
	if err != nil {
		return err
	}

	return printDoc(gf.format, doc)
}

func cmdDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("delete: usage: delete COLLECTION ID")
	}
	collection, id := rest[0], rest[1]

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	coll, err := db.CollectionGet(collection, false)
	if err != nil {
		return err
	}

	return coll.Delete(id)
}
