// Package bench is a small throughput/latency harness that drives the
// persist façade with synthetic documents, for manually sizing a driver
// or sanity-checking a change against a real on-disk database.
package bench

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/twoporeguys/libpersist/document"
	"github.com/twoporeguys/libpersist/persist"
)

// Options configures a Run.
type Options struct {
	Collection string
	Count      int
}

// Result summarizes one Run.
type Result struct {
	Count        int
	SaveP50      time.Duration
	SaveP95      time.Duration
	GetP50       time.Duration
	GetP95       time.Duration
	TotalElapsed time.Duration
}

// Run saves opts.Count synthetic documents into opts.Collection, reads
// each one back, and reports latency percentiles and overall throughput.
func Run(db *persist.DB, opts Options) (*Result, error) {
	if opts.Count <= 0 {
		opts.Count = 1000
	}

	coll, err := db.CollectionGet(opts.Collection, true)
	if err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}

	ids := make([]string, opts.Count)
	saveLatencies := make([]time.Duration, opts.Count)
	getLatencies := make([]time.Duration, opts.Count)

	start := time.Now()

	for i := 0; i < opts.Count; i++ {
		id := uuid.NewString()
		ids[i] = id

		doc := document.Doc{
			"id":    id,
			"seq":   i,
			"label": fmt.Sprintf("bench-%d", i),
		}

		t0 := time.Now()
		if err := coll.Save(doc); err != nil {
			return nil, fmt.Errorf("bench: save %d: %w", i, err)
		}
		saveLatencies[i] = time.Since(t0)
	}

	for i, id := range ids {
		t0 := time.Now()
		if _, err := coll.Get(id); err != nil {
			return nil, fmt.Errorf("bench: get %d: %w", i, err)
		}
		getLatencies[i] = time.Since(t0)
	}

	return &Result{
		Count:        opts.Count,
		SaveP50:      percentile(saveLatencies, 0.50),
		SaveP95:      percentile(saveLatencies, 0.95),
		GetP50:       percentile(getLatencies, 0.50),
		GetP95:       percentile(getLatencies, 0.95),
		TotalElapsed: time.Since(start),
	}, nil
}

func percentile(values []time.Duration, p float64) time.Duration {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// String renders r as a human-readable summary.
func (r *Result) String() string {
	return fmt.Sprintf(
		"%d documents in %s (%.0f docs/sec)\n  save p50=%s p95=%s\n  get  p50=%s p95=%s",
		r.Count, r.TotalElapsed, float64(r.Count)/r.TotalElapsed.Seconds(),
		r.SaveP50, r.SaveP95, r.GetP50, r.GetP95,
	)
}
