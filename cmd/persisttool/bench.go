package main

import (
	"flag"
	"fmt"

	"github.com/twoporeguys/libpersist/internal/bench"
)

func cmdBench(args []string) error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	collection := fs.String("collection", "bench", "collection to load")
	n := fs.Int("n", 1000, "number of documents to save/get")
	interactive := fs.Bool("interactive", false, "drive load manually from a prompt instead")

	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if *interactive {
		return bench.RunInteractive(db)
	}

	res, err := bench.Run(db, bench.Options{Collection: *collection, Count: *n})
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}
