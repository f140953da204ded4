// Package gid extracts the calling goroutine's numeric id for the rare
// call sites that need a side-channel keyed per goroutine rather than
// per explicit return value. It is a debug-only, slow-path mechanism:
// the hot persist/driver packages never call it.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current parses the goroutine id out of the header line of a recovered
// stack trace ("goroutine 123 [running]: ..."). Go has no public API for
// this; every other approach (TLS, cgo) is heavier for the one call site
// that needs it (persisterr's last-error side channel).
func Current() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]

	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	idx := bytes.IndexByte(buf, ' ')
	if idx < 0 {
		return 0
	}

	id, err := strconv.ParseInt(string(buf[:idx]), 10, 64)
	if err != nil {
		return 0
	}

	return id
}
