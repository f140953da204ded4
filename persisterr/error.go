// Package persisterr defines the error kinds every driver and façade
// method reports, plus a per-goroutine last-error side channel for
// callers whose Go return type doesn't already carry the failure detail.
// The persist and driver packages, the CLI and the bench harness return
// errors directly and do not record into the side channel.
package persisterr

import (
	"fmt"
	"sync"

	"github.com/twoporeguys/libpersist/internal/gid"
)

// Code classifies a failure. Values are stable and safe to switch on.
type Code int

const (
	// Internal is an unrecoverable backend error, surfaced only after
	// recoverable codes (busy/locked) have been retried.
	Internal Code = iota
	// NotFound reports a missing collection or document id.
	NotFound
	// InvalidArgument reports a malformed rule tree, missing id field,
	// or unknown operator.
	InvalidArgument
	// Serialization reports a JSON encode/decode failure.
	Serialization
	// Conflict is reserved for future use; the SQL driver only emits it
	// for a transaction started while already in a transaction.
	Conflict
)

func (c Code) String() string {
	switch c {
	case NotFound:
		return "not-found"
	case InvalidArgument:
		return "invalid-argument"
	case Serialization:
		return "serialization"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the error type every failing public operation returns.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New constructs an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error with the given code, so callers can
// write `errors.Is`-style checks against a sentinel built with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	lastMu sync.Mutex
	last   = map[int64]*Error{}
)

// Set records err as the calling goroutine's last error. Only the
// side-channel callers (CLI, bench harness) need to call this; ordinary
// persist/driver code returns the error directly instead.
func Set(code Code, format string, args ...any) *Error {
	err := New(code, format, args...)
	lastMu.Lock()
	last[gid.Current()] = err
	lastMu.Unlock()
	return err
}

// Last returns the calling goroutine's last recorded error, if any.
func Last() (*Error, bool) {
	lastMu.Lock()
	defer lastMu.Unlock()
	err, ok := last[gid.Current()]
	return err, ok
}

// Clear removes the calling goroutine's last recorded error.
func Clear() {
	lastMu.Lock()
	delete(last, gid.Current())
	lastMu.Unlock()
}
