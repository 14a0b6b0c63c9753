package status

import (
	"sync"
	"time"
)

// State is the coarse processing state shown to operators.
type State string

const (
	StateIdle        State = "idle"
	StateIngesting   State = "ingesting"
	StateReconciling State = "reconciling"
)

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	State          State      `json:"status"`
	ProcessedCount int64      `json:"processed_count"`
	ErrorCount     int64      `json:"error_count"`
	Uploads        int64      `json:"uploads"`
	Staged         int64      `json:"staged"`
	Rejected       int64      `json:"rejected"`
	Passes         int64      `json:"passes"`
	Synced         int64      `json:"synced"`
	ProcessingTime float64    `json:"processing_time"`
	LastPassError  string     `json:"last_pass_error,omitempty"`
	LastUpdate     *time.Time `json:"last_update"`
	LastPassAt     *time.Time `json:"last_pass_at"`
}

// Tracker aggregates ingestion and reconciliation progress. It is shared by the
// upload path, the scheduler and the status endpoint.
type Tracker struct {
	mu     sync.Mutex
	snap   Snapshot
	active map[State]int
	now    func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{State: StateIdle}, active: make(map[State]int), now: time.Now}
}

// Begin marks s as in progress until the returned func is called.
func (t *Tracker) Begin(s State) func() {
	t.mu.Lock()
	t.active[s]++
	t.refresh()
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		t.active[s]--
		t.refresh()
		t.mu.Unlock()
	}
}

// refresh derives State from active work; reconciling wins over ingesting. Callers hold mu.
func (t *Tracker) refresh() {
	switch {
	case t.active[StateReconciling] > 0:
		t.snap.State = StateReconciling
	case t.active[StateIngesting] > 0:
		t.snap.State = StateIngesting
	default:
		t.snap.State = StateIdle
	}

	t.touch()
}

func (t *Tracker) touch() {
	now := t.now().UTC()
	t.snap.LastUpdate = &now
}

// RecordUpload adds the outcome of one upload.
func (t *Tracker) RecordUpload(staged, rejected, stageFailures int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Uploads++
	t.snap.Staged += int64(staged)
	t.snap.Rejected += int64(rejected)
	t.snap.ErrorCount += int64(rejected + stageFailures)
	t.touch()
}

// RecordPass adds the outcome of one reconciliation pass. err is the pass-level failure, if any.
func (t *Tracker) RecordPass(synced, errs int, took time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Passes++
	t.snap.Synced += int64(synced)
	t.snap.ProcessedCount += int64(synced)
	t.snap.ErrorCount += int64(errs)
	t.snap.ProcessingTime = took.Seconds()

	t.snap.LastPassError = ""
	if err != nil {
		t.snap.LastPassError = err.Error()
	}

	t.touch()
	t.snap.LastPassAt = t.snap.LastUpdate
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.snap
}
