package main

import (
	"flag"
	"fmt"
)

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	gf := bindGlobalFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := gf.open()
	if err != nil {
		return err
	}
	defer db.Close()

	var names []string
	db.CollectionsApply(func(name string) bool {
		names = append(names, name)
		return true
	})

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
