package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CompleteUrl_UpdatesCountsAndETA(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	tr := NewWithClock("job-1", 4, clock)

	current = current.Add(10 * time.Second)
	snap := tr.CompleteUrl("https://a.test/1", 3, 1024, 100, 80, "article")

	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 1, snap.Succeeded)
	assert.Equal(t, 30*time.Second, snap.EstimatedRemain)
	assert.False(t, snap.Done)
	assert.Equal(t, 3, snap.TotalChunks)
	assert.Equal(t, 1, snap.PerDomain["a.test"])
	assert.Equal(t, 1, snap.PerStatus[StatusCompleted])
	assert.Equal(t, 1, snap.PerContentType["article"])
	assert.Equal(t, int64(80), snap.ResponseTimes.MinMS)
	assert.Equal(t, int64(80), snap.ResponseTimes.MaxMS)
	assert.Equal(t, int64(80), snap.ResponseTimes.AvgMS())
}

func TestTracker_ChannelClosesExactlyOnceWhenTotalReached(t *testing.T) {
	tr := New("job-2", 1)
	ch := tr.Subscribe()

	tr.CompleteUrl("https://a.test/1", 1, 10, 1, 5, "general")

	// Drain the buffered snapshots; the receive after them sees the close.
	for len(ch) > 0 {
		<-ch
	}
	_, open := <-ch
	require.False(t, open, "channel should be closed once processed reaches total")
}

func TestTracker_FailUrlCountsTowardProcessed(t *testing.T) {
	tr := New("job-3", 2)
	snap := tr.FailUrl("https://a.test/bad", "NetworkTransient", "timeout", 504, 3, 0)
	assert.Equal(t, 1, snap.Processed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 1, snap.PerErrorType["NetworkTransient"])
	assert.Equal(t, 1, snap.PerDomain["a.test"])
}

func TestTracker_CancelClosesChannel(t *testing.T) {
	tr := New("job-4", 10)
	ch := tr.Subscribe()
	snap := tr.Cancel("user_requested")
	assert.True(t, snap.Cancelled)
	assert.Equal(t, "user_requested", snap.CancelReason)

	for len(ch) > 0 {
		<-ch
	}
	_, open := <-ch
	require.False(t, open)
}

func TestTracker_SecondCancelIsNoop(t *testing.T) {
	tr := New("job-5", 1)
	tr.Cancel("first")
	snap := tr.Cancel("second")
	assert.Equal(t, "first", snap.CancelReason, "finishLocked must only apply the first terminal transition")
}

func TestRegistry_SweepEvictsIdleTrackers(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	reg := NewRegistry(time.Minute)
	reg.now = clock
	tr := reg.Create("job-6", 1)
	ch := tr.Subscribe()

	current = current.Add(2 * time.Minute)
	evicted := reg.Sweep()
	require.Equal(t, []string{"job-6"}, evicted)

	for len(ch) > 0 {
		<-ch
	}
	_, open := <-ch
	require.False(t, open)

	_, found := reg.Get("job-6")
	assert.False(t, found)
}
