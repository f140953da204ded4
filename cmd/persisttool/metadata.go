package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

func cmdGetMetadata(args []string) error {
	fs := flag.NewFlagSet("get-metadata", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("get-metadata: usage: get-metadata COLLECTION")
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	md, err := db.CollectionGetMetadata(rest[0])
	if err != nil {
		return err
	}

	buf, err := json.Marshal(md)
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func cmdSetMetadata(args []string) error {
	fs := flag.NewFlagSet("set-metadata", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return fmt.Errorf("set-metadata: usage: set-metadata COLLECTION (metadata JSON on stdin)")
	}

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("set-metadata: read stdin: %w", err)
	}

	var md map[string]any
	if err := json.Unmarshal(body, &md); err != nil {
		return fmt.Errorf("set-metadata: %w", err)
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.CollectionSetMetadata(rest[0], md)
}
