package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/freedlm/fdm/internal/transfer"
)

func ptr(v int64) *int64 { return &v }

func TestNormalize_ZeroAndNegativeBecomeAbsent(t *testing.T) {
	out := Normalize(transfer.SpeedLimits{DownloadBps: ptr(0), UploadBps: ptr(-5)})
	assert.Nil(t, out.DownloadBps)
	assert.Nil(t, out.UploadBps)
}

func TestNormalize_PositivePreserved(t *testing.T) {
	out := Normalize(transfer.SpeedLimits{DownloadBps: ptr(1000)})
	require := out.DownloadBps
	assert.NotNil(t, require)
	assert.Equal(t, int64(1000), *require)
}

func TestSetGet_RoundTrips(t *testing.T) {
	l := New()
	got := l.Set(transfer.SpeedLimits{DownloadBps: ptr(500)})
	assert.Equal(t, int64(500), *got.DownloadBps)

	again := l.Get()
	assert.Equal(t, int64(500), *again.DownloadBps)
}

func TestAcquire_NoLimitNeverSleeps(t *testing.T) {
	l := New()
	slept := false
	l.sleep = func(time.Duration) { slept = true }

	l.Acquire(1 << 30)
	assert.False(t, slept)
}

func TestAcquire_SleepsWhenOverBudget(t *testing.T) {
	l := New()
	l.Set(transfer.SpeedLimits{DownloadBps: ptr(1000)})

	var fakeNow time.Time
	l.now = func() time.Time { return fakeNow }
	var slept time.Duration
	l.sleep = func(d time.Duration) { slept += d }

	fakeNow = time.Unix(0, 0)
	l.Acquire(500) // half-budget: projected 0.5s > elapsed 0, so it sleeps 0.5s
	assert.Equal(t, 500*time.Millisecond, slept)

	l.Acquire(1000) // 1500 bytes projected at 1000bps = 1.5s, elapsed still ~0
	assert.Greater(t, slept, time.Duration(0))
}

func TestAcquire_SleepCappedAt1500ms(t *testing.T) {
	l := New()
	l.Set(transfer.SpeedLimits{DownloadBps: ptr(1)}) // pathologically tiny

	fakeNow := time.Unix(0, 0)
	l.now = func() time.Time { return fakeNow }
	var slept time.Duration
	l.sleep = func(d time.Duration) { slept = d }

	l.Acquire(100000)
	assert.LessOrEqual(t, slept, maxSleep)
}

func TestAcquire_WindowResetsAfterOneSecond(t *testing.T) {
	l := New()
	l.Set(transfer.SpeedLimits{DownloadBps: ptr(1000)})

	fakeNow := time.Unix(0, 0)
	l.now = func() time.Time { return fakeNow }
	l.sleep = func(time.Duration) {}

	l.Acquire(900)
	assert.Equal(t, int64(900), l.windowBytes)

	fakeNow = fakeNow.Add(1100 * time.Millisecond)
	l.Acquire(100)
	assert.Equal(t, int64(100), l.windowBytes, "window should have reset")
}
