package sqlite

import (
	"errors"

	msqlite "modernc.org/sqlite"
)

// SQLite result codes for the two transient conditions the spec's
// retry loop recognizes. These are the engine's own stable numeric
// codes, not specific to any particular Go binding.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// isRetryable reports whether err is a SQLITE_BUSY or SQLITE_LOCKED
// condition, the only outcomes the retry policy is applied to; every
// other error is surfaced immediately.
func isRetryable(err error) bool {
	var serr *msqlite.Error
	if !errors.As(err, &serr) {
		return false
	}

	code := serr.Code()
	return code == sqliteBusy || code == sqliteLocked
}
