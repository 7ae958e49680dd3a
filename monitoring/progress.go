package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts the frames a renderer has run out of the frames it
// is expected to run.
type ProgressBar struct {
	lock      sync.Mutex
	id        string
	name      string
	startTime time.Time
	total     uint64
	finished  uint64
	failed    uint64
}

// ProgressStatus is what the monitor reports for a ProgressBar.
type ProgressStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
	Failed    uint64    `json:"failed"`
}

// FrameDone counts one more frame. Frames that failed to update are counted
// as finished and as failed.
func (b *ProgressBar) FrameDone(failed bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished++
	if failed {
		b.failed++
	}
}

// Status returns the current counters.
func (b *ProgressBar) Status() ProgressStatus {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressStatus{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.startTime,
		Total:     b.total,
		Finished:  b.finished,
		Failed:    b.failed,
	}
}
