package main

import (
	"fmt"
	"os"
)

func usage() {
	fmt.Fprintf(os.Stderr, `persisttool v%s - libpersist command-line client

Usage: persisttool COMMAND --file PATH [options]

Commands:
  list                          list collections
  query [--limit N --offset N --sort FIELD --desc --count] COLLECTION [field=value...]
  get-metadata COLLECTION
  set-metadata COLLECTION       (metadata JSON read from stdin)
  get COLLECTION ID
  insert COLLECTION             (document JSON read from stdin)
  delete COLLECTION ID

Global options:
  --file PATH       database file path (required)
  --driver NAME     storage driver name (default "sqlite")
  --format FORMAT   table|json (default "table")
`, version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "list":
		err = cmdList(args)
	case "query":
		err = cmdQuery(args)
	case "get-metadata":
		err = cmdGetMetadata(args)
	case "set-metadata":
		err = cmdSetMetadata(args)
	case "get":
		err = cmdGet(args)
	case "insert":
		err = cmdInsert(args)
	case "delete":
		err = cmdDelete(args)
	case "bench":
		err = cmdBench(args)
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "persisttool: unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "persisttool: %v\n", err)
		os.Exit(1)
	}
}
