package infra

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(clock *fakeClock, opts ...AbuseOption) *AbuseTracker {
	return NewAbuseTracker(append([]AbuseOption{WithAbuseClock(clock)}, opts...)...)
}

func TestAbuseTracker_SixthFailureInWindowBlocks(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)

	for i := range 5 {
		assert.False(t, tr.RecordFailure("1.2.3.4"), "failure %d should not block", i+1)
		clock.Advance(300 * time.Millisecond)
	}
	assert.False(t, tr.IsBlocked("1.2.3.4"))

	assert.True(t, tr.RecordFailure("1.2.3.4"))
	assert.True(t, tr.IsBlocked("1.2.3.4"))
	assert.Equal(t, 0, tr.Failures("1.2.3.4"), "failure sequence should be cleared when the block starts")
	assert.False(t, tr.IsBlocked("5.6.7.8"), "other ips are not affected")
}

func TestAbuseTracker_BlockLastsExactlyTheBanDuration(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock, WithBlockDuration(time.Hour))

	for range 6 {
		tr.RecordFailure("1.2.3.4")
	}
	until, ok := tr.BlockedUntil("1.2.3.4")
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(time.Hour), until)

	clock.Advance(time.Hour - time.Nanosecond)
	assert.True(t, tr.IsBlocked("1.2.3.4"))

	clock.Advance(time.Nanosecond)
	assert.False(t, tr.IsBlocked("1.2.3.4"))
	_, ok = tr.BlockedUntil("1.2.3.4")
	assert.False(t, ok)
}

func TestAbuseTracker_DefaultBanIsOneDay(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)
	start := clock.Now()
	for range 6 {
		tr.RecordFailure("ip")
	}
	until, ok := tr.BlockedUntil("ip")
	require.True(t, ok)
	assert.Equal(t, start.Add(24*time.Hour), until)
}

func TestAbuseTracker_FailuresOutsideWindowArePruned(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)

	for range 5 {
		tr.RecordFailure("ip")
	}
	clock.Advance(5*time.Second + time.Nanosecond)

	assert.False(t, tr.RecordFailure("ip"))
	assert.Equal(t, 1, tr.Failures("ip"))
	assert.False(t, tr.IsBlocked("ip"))
}

func TestAbuseTracker_WindowEdgeIsInclusive(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)

	for range 5 {
		tr.RecordFailure("ip")
	}
	clock.Advance(5 * time.Second)

	assert.True(t, tr.RecordFailure("ip"), "failures exactly 5s old are still inside the window")
}

func TestAbuseTracker_CountingRestartsAfterBlockLapses(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock, WithBlockDuration(time.Minute))

	for range 6 {
		tr.RecordFailure("ip")
	}
	require.True(t, tr.IsBlocked("ip"))
	clock.Advance(time.Minute)
	require.False(t, tr.IsBlocked("ip"))

	for range 5 {
		assert.False(t, tr.RecordFailure("ip"))
	}
	assert.True(t, tr.RecordFailure("ip"))
}

func TestAbuseTracker_CustomThreshold(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock, WithMaxFailures(2), WithAbuseWindow(time.Second))

	tr.RecordFailure("ip")
	tr.RecordFailure("ip")
	assert.False(t, tr.IsBlocked("ip"))
	tr.RecordFailure("ip")
	assert.True(t, tr.IsBlocked("ip"))
}

func TestAbuseTracker_ConcurrentFailuresAreLinearized(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock, WithMaxFailures(1000))

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.RecordFailure("ip")
			tr.IsBlocked("ip")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Failures("ip"))
}

func TestAbuseTracker_ConcurrentThresholdInstallsOneBlock(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		blocks int
	)
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.RecordFailure("ip") {
				mu.Lock()
				blocks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, blocks)
	assert.True(t, tr.IsBlocked("ip"))
}

func TestAbuseTracker_SweepDropsStaleState(t *testing.T) {
	clock := newFakeClock()
	tr := newTestTracker(clock, WithBlockDuration(time.Minute))

	tr.RecordFailure("stale")
	for range 6 {
		tr.RecordFailure("banned")
	}
	assert.Equal(t, 0, tr.Sweep(), "nothing is stale yet")

	clock.Advance(10 * time.Second)
	tr.RecordFailure("recent")
	assert.Equal(t, 1, tr.Sweep(), "only the stale failure sequence goes")
	assert.Equal(t, 0, tr.Failures("stale"))
	assert.Equal(t, 1, tr.Failures("recent"))
	assert.True(t, tr.IsBlocked("banned"))

	clock.Advance(time.Minute)
	assert.Equal(t, 2, tr.Sweep(), "expired block and the now-stale sequence go")
	assert.False(t, tr.IsBlocked("banned"))
}
