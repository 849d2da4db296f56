package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/webflux/policy"
)

func TestResolveDelay_NoPriorFetchIsImmediate(t *testing.T) {
	l := New(WithBaseDelay(100 * time.Millisecond))
	assert.Equal(t, time.Duration(0), l.ResolveDelay("example.com"))
}

func TestResolveDelay_HonorsBaseDelay(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	l := New(WithBaseDelay(50*time.Millisecond), WithClock(clock))

	l.MarkLastFetchAsNow("example.com")
	delay := l.ResolveDelay("example.com")
	assert.InDelta(t, 50*time.Millisecond, delay, float64(5*time.Millisecond))
}

func TestResolveDelay_CrawlDelayOverridesBase(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	l := New(WithBaseDelay(10*time.Millisecond), WithClock(clock))
	l.SetCrawlDelay("example.com", 200*time.Millisecond)

	l.MarkLastFetchAsNow("example.com")
	delay := l.ResolveDelay("example.com")
	assert.InDelta(t, 200*time.Millisecond, delay, float64(5*time.Millisecond))
}

func TestHostsAreIndependent(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	l := New(WithBaseDelay(time.Second), WithClock(clock))

	l.MarkLastFetchAsNow("slow.com")
	assert.Equal(t, time.Duration(0), l.ResolveDelay("fast.com"))
	assert.Greater(t, l.ResolveDelay("slow.com"), time.Duration(0))
}

func TestRequestRate_SlidingWindow(t *testing.T) {
	current := time.Now()
	clock := func() time.Time { return current }
	l := New(WithClock(clock))
	l.SetRequestRate("example.com", &policy.RequestRate{Requests: 2, Window: time.Minute})

	l.MarkLastFetchAsNow("example.com")
	current = current.Add(time.Millisecond)
	l.MarkLastFetchAsNow("example.com")

	delay := l.ResolveDelay("example.com")
	assert.Greater(t, delay, time.Duration(0))
	assert.LessOrEqual(t, delay, time.Minute)
}

func TestVisitTime_BlocksOutsideWindow(t *testing.T) {
	// 03:00 UTC, window is 08:00-20:00.
	current := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	l := New(WithClock(clock), WithVisitTimeEnforced(true))
	l.SetVisitTime("example.com", &policy.VisitTimeWindow{StartMinute: 8 * 60, EndMinute: 20 * 60})

	delay := l.ResolveDelay("example.com")
	assert.Equal(t, 5*time.Hour, delay)
}

func TestVisitTime_NotEnforcedByDefault(t *testing.T) {
	current := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	clock := func() time.Time { return current }
	l := New(WithClock(clock))
	l.SetVisitTime("example.com", &policy.VisitTimeWindow{StartMinute: 8 * 60, EndMinute: 20 * 60})

	assert.Equal(t, time.Duration(0), l.ResolveDelay("example.com"))
}

func TestBackoff_IncreasesDelayExponentially(t *testing.T) {
	l := New(WithRandomSeed(1))
	l.Backoff("example.com")
	first := l.state("example.com").backoffDelay
	l.Backoff("example.com")
	second := l.state("example.com").backoffDelay
	assert.Greater(t, second, first)

	l.ResetBackoff("example.com")
	assert.Equal(t, time.Duration(0), l.state("example.com").backoffDelay)
}

func TestAcquire_RespectsContextCancellation(t *testing.T) {
	l := New(WithBaseDelay(time.Hour))
	l.MarkLastFetchAsNow("example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx, "example.com")
	require.Error(t, err)
}

func TestAcquire_SucceedsImmediatelyWhenNoDelay(t *testing.T) {
	l := New()
	err := l.Acquire(context.Background(), "example.com")
	require.NoError(t, err)
}
