package filter

import (
	"sync"
	"time"
)

// RejectReason names the first failing compatibility condition for a
// rejected row.
type RejectReason string

const (
	RejectAspect       RejectReason = "unsupported_aspect"
	RejectSubGroupSize RejectReason = "unsupported_sub_group_size"
	RejectFixedTarget  RejectReason = "fixed_target_mismatch"
)

// RunStats summarizes one filtering run.
type RunStats struct {
	RowsTotal    int64
	RowsAccepted int64
	RowsRejected int64

	// Rejections counts rejected rows by failing condition.
	Rejections map[RejectReason]int64

	// PropertyFilesParsed is the number of distinct property file
	// contents parsed; CacheHits counts rows that reused a parse.
	PropertyFilesParsed int64
	CacheHits           int64

	ElapsedMs int64
}

// recorder accumulates run statistics. Row evaluation may run from
// multiple goroutines, so recording is mutex-guarded.
type recorder struct {
	mu         sync.Mutex
	total      int64
	accepted   int64
	rejections map[RejectReason]int64
	hits       int64
	misses     int64
}

func newRecorder() *recorder {
	return &recorder{
		rejections: make(map[RejectReason]int64),
	}
}

// record accounts one row decision.
func (r *recorder) record(d decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if d.accepted {
		r.accepted++
	} else {
		r.rejections[d.reason]++
	}
}

// passThrough accounts a whole table copied unchanged.
func (r *recorder) passThrough(rows int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total += rows
	r.accepted += rows
}

// cacheCounts stores the requirements-cache counters.
func (r *recorder) cacheCounts(hits, misses int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = hits
	r.misses = misses
}

// snapshot returns an immutable copy of the accumulated statistics.
func (r *recorder) snapshot(elapsed time.Duration) *RunStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	rejections := make(map[RejectReason]int64, len(r.rejections))
	var rejected int64
	for reason, count := range r.rejections {
		rejections[reason] = count
		rejected += count
	}
	return &RunStats{
		RowsTotal:           r.total,
		RowsAccepted:        r.accepted,
		RowsRejected:        rejected,
		Rejections:          rejections,
		PropertyFilesParsed: r.misses,
		CacheHits:           r.hits,
		ElapsedMs:           elapsed.Milliseconds(),
	}
}
