// Command persisttool is a single-shot CLI over the persist façade: one
// subcommand per invocation, exit code 0 on success and 1 on any error.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"flag"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persist"
)

const version = "0.1.0"

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	file   string
	driver string
	format string
}

func bindGlobalFlags(fs *flag.FlagSet) *globalFlags {
	gf := &globalFlags{}
	fs.StringVar(&gf.file, "file", "", "database file path (required)")
	fs.StringVar(&gf.driver, "driver", "sqlite", "storage driver name")
	fs.StringVar(&gf.format, "format", "table", "output format: table|json")
	return gf
}

func (gf *globalFlags) open() (*persist.DB, error) {
	if gf.file == "" {
		return nil, fmt.Errorf("--file is required")
	}
	return persist.Open(gf.file, gf.driver, nil)
}

// printDoc writes doc to stdout in the requested format.
func printDoc(format string, doc document.Doc) error {
	switch format {
	case "json", "":
		buf, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
		return nil
	case "table":
		return printTable([]document.Doc{doc})
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

func printDocs(format string, docs []document.Doc) error {
	switch format {
	case "json":
		buf, err := json.Marshal(docs)
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
		return nil
	case "table", "":
		return printTable(docs)
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
}

// printTable renders docs as a naive whitespace-aligned table, keyed by
// the union of fields seen, "id" always first.
func printTable(docs []document.Doc) error {
	if len(docs) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var cols []string
	cols = append(cols, document.IDField)
	seen[document.IDField] = true

	for _, doc := range docs {
		var keys []string
		for k := range doc {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintln(w, strings.Join(cols, "\t"))
	for _, doc := range docs {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = fmt.Sprintf("%v", doc[c])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
