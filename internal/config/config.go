// Package config resolves the options passed to persist.Open — the
// params map plus sidecar-file overrides — into a plain struct the SQL
// driver reads once at open time. It reads no environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SidecarFile is the optional per-database config file persist.Open
// looks for next to the database path.
const SidecarFile = "persist.json"

// Config is the resolved, driver-facing configuration for one database.
type Config struct {
	// ReadCacheSize bounds the SQL driver's read-through cache (0
	// disables it).
	ReadCacheSize int `json:"read_cache_size"`
	// DefaultQueryLimit caps Query's result size when the caller's
	// QueryParams.Limit is zero (0 means unlimited, the spec default).
	DefaultQueryLimit uint64 `json:"default_query_limit"`
}

// Default returns the zero-value configuration: no read cache, no
// implicit query limit, matching the original driver's unbounded
// defaults exactly.
func Default() Config {
	return Config{}
}

// FromParams overlays values found in params (as produced by callers of
// persist.Open) onto base.
func FromParams(base Config, params map[string]any) Config {
	if params == nil {
		return base
	}

	if v, ok := params["read_cache_size"]; ok {
		if n, ok := toInt(v); ok {
			base.ReadCacheSize = n
		}
	}

	if v, ok := params["default_query_limit"]; ok {
		if n, ok := toInt(v); ok && n >= 0 {
			base.DefaultQueryLimit = uint64(n)
		}
	}

	return base
}

// FromSidecar overlays values found in a persist.json file sitting next
// to dbPath, if one exists. A missing sidecar is not an error.
func FromSidecar(base Config, dbPath string) (Config, error) {
	path := filepath.Join(filepath.Dir(dbPath), SidecarFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}

	var overlay Config
	if err := json.Unmarshal(data, &overlay); err != nil {
		return base, err
	}

	if overlay.ReadCacheSize != 0 {
		base.ReadCacheSize = overlay.ReadCacheSize
	}
	if overlay.DefaultQueryLimit != 0 {
		base.DefaultQueryLimit = overlay.DefaultQueryLimit
	}

	return base, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
