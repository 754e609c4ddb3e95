package scanner

import (
	"sync/atomic"
	"time"
)

// Tracker observes completion progress for a running scan. The completed
// count increases monotonically, once per finished work item, regardless
// of which worker finished it. Trackers are safe for concurrent use.
type Tracker struct {
	total     int64
	completed atomic.Int64
	start     time.Time
}

// NewTracker starts tracking a scan over total work items.
func NewTracker(total int) *Tracker {
	return &Tracker{total: int64(total), start: time.Now()}
}

// done records one finished item and returns the new completed count.
func (t *Tracker) done() int {
	return int(t.completed.Add(1))
}

// ProgressSnapshot is a point-in-time view of scan progress. ETA is
// advisory only and never used to short-circuit work.
type ProgressSnapshot struct {
	Completed int
	Total     int
	Elapsed   time.Duration
	ETA       time.Duration
}

// Snapshot returns the current progress state.
func (t *Tracker) Snapshot() ProgressSnapshot {
	completed := t.completed.Load()
	elapsed := time.Since(t.start)
	var eta time.Duration
	if completed > 0 && completed < t.total {
		perItem := elapsed / time.Duration(completed)
		eta = perItem * time.Duration(t.total-completed)
	}
	return ProgressSnapshot{
		Completed: int(completed),
		Total:     int(t.total),
		Elapsed:   elapsed,
		ETA:       eta,
	}
}

// Elapsed returns wall-clock time since tracking started.
func (t *Tracker) Elapsed() time.Duration { return time.Since(t.start) }
