package status_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/posrecon/internal/status"
)

func TestTracker_States(t *testing.T) {
	tr := status.NewTracker()
	assert.Equal(t, status.StateIdle, tr.Snapshot().State)
	assert.Nil(t, tr.Snapshot().LastUpdate)

	doneIngest := tr.Begin(status.StateIngesting)
	assert.Equal(t, status.StateIngesting, tr.Snapshot().State)

	doneSync := tr.Begin(status.StateReconciling)
	assert.Equal(t, status.StateReconciling, tr.Snapshot().State)

	doneSync()
	assert.Equal(t, status.StateIngesting, tr.Snapshot().State)

	doneIngest()
	assert.Equal(t, status.StateIdle, tr.Snapshot().State)
	assert.NotNil(t, tr.Snapshot().LastUpdate)
}

func TestTracker_Counters(t *testing.T) {
	tr := status.NewTracker()

	tr.RecordUpload(98, 2, 1)
	tr.RecordPass(98, 0, 1500*time.Millisecond, nil)
	tr.RecordPass(0, 3, time.Second, errors.New("commit failed"))

	snap := tr.Snapshot()
	assert.Equal(t, int64(1), snap.Uploads)
	assert.Equal(t, int64(98), snap.Staged)
	assert.Equal(t, int64(2), snap.Rejected)
	assert.Equal(t, int64(2), snap.Passes)
	assert.Equal(t, int64(98), snap.Synced)
	assert.Equal(t, int64(98), snap.ProcessedCount)
	assert.Equal(t, int64(6), snap.ErrorCount)
	assert.Equal(t, 1.0, snap.ProcessingTime)
	assert.Equal(t, "commit failed", snap.LastPassError)
	require.NotNil(t, snap.LastPassAt)

	tr.RecordPass(1, 0, 0, nil)
	assert.Empty(t, tr.Snapshot().LastPassError)
}

func TestTracker_Concurrent(t *testing.T) {
	tr := status.NewTracker()

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			done := tr.Begin(status.StateIngesting)
			tr.RecordUpload(1, 0, 0)
			done()
		}()
	}

	wg.Wait()

	snap := tr.Snapshot()
	assert.Equal(t, int64(50), snap.Uploads)
	assert.Equal(t, status.StateIdle, snap.State)
}
