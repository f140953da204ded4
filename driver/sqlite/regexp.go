package sqlite

import (
	"database/sql/driver"
	"fmt"
	"regexp"

	msqlite "modernc.org/sqlite"
)

// registerRegexp installs the "regexp" scalar function SQLite's REGEXP
// operator dispatches to: "X REGEXP Y" is evaluated as a call to the
// application-defined function regexp(Y, X). SQLite has no built-in
// REGEXP implementation; without registering one, every rule using the
// "~" field operator fails at query time with "no such function:
// regexp". Registration is process-wide, so it happens once from this
// package's init(), not from Driver.Open.
func registerRegexp() error {
	return msqlite.RegisterDeterministicScalarFunction("regexp", 2, regexpFunc)
}

func regexpFunc(ctx *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	pattern, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("regexp: pattern argument must be text, got %T", args[0])
	}
	value, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("regexp: value argument must be text, got %T", args[1])
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexp: %w", err)
	}
	return re.MatchString(value), nil
}
