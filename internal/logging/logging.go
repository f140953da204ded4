// Package logging provides the SQL driver's statement/row tracer. It is
// deliberately small: the spec names exactly two trace events
// (SQL text, returned row ids), so this is not a general
// leveled-logging facility.
package logging

import (
	"fmt"
	"os"
	"sync"
)

// Tracer receives trace events from the SQL driver when tracing is
// enabled. Implementations must be safe for concurrent use.
type Tracer interface {
	// OnStatement is called with the SQL text about to execute. The SQL
	// driver writes document ids into the text, shows a saved payload
	// as "...", and leaves the values bound to Count/Query rule-tree
	// placeholders out: they appear as "?".
	OnStatement(sql string)
	// OnRow is called once per row returned, naming the source table
	// and the row's primary key.
	OnRow(table, id string)
}

// stderrTracer writes trace events to stderr, matching the reference
// driver's sqlite_trace_callback behavior.
type stderrTracer struct {
	mu     sync.Mutex
	prefix string
}

// NewStderr returns a Tracer that logs to os.Stderr, tagged with prefix
// (typically the database path, so multiple open databases are
// distinguishable in the log).
func NewStderr(prefix string) Tracer {
	return &stderrTracer{prefix: prefix}
}

func (t *stderrTracer) OnStatement(sql string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(os.Stderr, "(%s): executing %s\n", t.prefix, sql)
}

func (t *stderrTracer) OnRow(table, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(os.Stderr, "(%s): table %s: returning row %s\n", t.prefix, table, id)
}

// FromEnv returns a Tracer built from the LIBPERSIST_LOGGING environment
// variable. It returns nil when tracing is not enabled, the only value
// recognized being "stderr".
func FromEnv(prefix string) Tracer {
	if os.Getenv("LIBPERSIST_LOGGING") == "stderr" {
		return NewStderr(prefix)
	}
	return nil
}
