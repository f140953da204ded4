package bench

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persist"
)

// RunInteractive opens a readline prompt loop for manually driving load
// against db: "save COLLECTION", "get COLLECTION ID", "count COLLECTION",
// "exit". It is meant for manual exploration of a test database, not
// scripted use.
func RunInteractive(db *persist.DB) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mbench>\033[0m ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("bench: readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("persisttool bench — interactive mode. Commands: save COLLECTION, get COLLECTION ID, count COLLECTION, exit")

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]

		if cmd == "exit" || cmd == "quit" {
			return nil
		}

		if err := dispatch(db, cmd, fields[1:]); err != nil {
			fmt.Printf("\033[31merror: %v\033[0m\n", err)
		}
	}
}

func dispatch(db *persist.DB, cmd string, args []string) error {
	switch cmd {
	case "save":
		if len(args) != 1 {
			return fmt.Errorf("usage: save COLLECTION")
		}
		coll, err := db.CollectionGet(args[0], true)
		if err != nil {
			return err
		}
		res, err := Run(db, Options{Collection: coll.Name(), Count: 1})
		if err != nil {
			return err
		}
		fmt.Println(res)
		return nil

	case "get":
		if len(args) != 2 {
			return fmt.Errorf("usage: get COLLECTION ID")
		}
		coll, err := db.CollectionGet(args[0], false)
		if err != nil {
			return err
		}
		doc, err := coll.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Println(formatDoc(doc))
		return nil

	case "count":
		if len(args) != 1 {
			return fmt.Errorf("usage: count COLLECTION")
		}
		coll, err := db.CollectionGet(args[0], false)
		if err != nil {
			return err
		}
		n, err := coll.Count(nil)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func formatDoc(doc document.Doc) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for k, v := range doc {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s: %v", k, v)
	}
	b.WriteString("}")
	return b.String()
}
