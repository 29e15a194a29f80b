// Package ratelimit implements the process-wide download-bytes-per-second
// cap consulted by every Worker on every chunk (SPEC_FULL.md §4.C). The
// upload limit is accepted and stored but never enforced here — it exists
// for forward compatibility with non-HTTP transfer kinds, exactly as the
// spec's design notes describe.
package ratelimit

import (
	"sync"
	"time"

	"github.com/freedlm/fdm/internal/transfer"
)

// maxSleep bounds any single rate-limit sleep, so a Worker always gets a
// chance to observe cancellation within a bounded time.
const maxSleep = 1500 * time.Millisecond

// Limiter tracks one sliding one-second window shared by every in-flight
// transfer, plus the stored (but only partially enforced) SpeedLimits.
type Limiter struct {
	mu sync.Mutex

	downloadBps int64 // 0 = unlimited
	uploadBps   int64 // 0 = unlimited, never enforced

	windowStart time.Time
	windowBytes int64

	sleep func(time.Duration) // overridable for tests
	now   func() time.Time
}

// New returns a Limiter with no configured limit.
func New() *Limiter {
	return &Limiter{
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Normalize converts zero/negative rates in limits to "no limit" (nil),
// matching SPEC_FULL.md §3's "Speed Limits" invariant, and returns the
// normalized value without mutating limits.
func Normalize(limits transfer.SpeedLimits) transfer.SpeedLimits {
	out := transfer.SpeedLimits{}
	if limits.DownloadBps != nil && *limits.DownloadBps > 0 {
		v := *limits.DownloadBps
		out.DownloadBps = &v
	}
	if limits.UploadBps != nil && *limits.UploadBps > 0 {
		v := *limits.UploadBps
		out.UploadBps = &v
	}
	return out
}

// Set installs the normalized limits atomically.
func (l *Limiter) Set(limits transfer.SpeedLimits) transfer.SpeedLimits {
	normalized := Normalize(limits)

	l.mu.Lock()
	defer l.mu.Unlock()
	if normalized.DownloadBps != nil {
		l.downloadBps = *normalized.DownloadBps
	} else {
		l.downloadBps = 0
	}
	if normalized.UploadBps != nil {
		l.uploadBps = *normalized.UploadBps
	} else {
		l.uploadBps = 0
	}
	return normalized
}

// Get returns the currently stored limits, normalized.
func (l *Limiter) Get() transfer.SpeedLimits {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := transfer.SpeedLimits{}
	if l.downloadBps > 0 {
		v := l.downloadBps
		out.DownloadBps = &v
	}
	if l.uploadBps > 0 {
		v := l.uploadBps
		out.UploadBps = &v
	}
	return out
}

// Acquire blocks, if necessary, before the caller is allowed to consume
// chunkSize bytes of download budget. See SPEC_FULL.md §4.C for the exact
// window math: let w be bytes consumed in the current window and e be
// seconds since the window started; the projected finish time for
// accepting this chunk is p = (w+chunk)/L. If p > e, sleep for
// min(p-e, maxSleep). When e >= 1s, the window resets.
func (l *Limiter) Acquire(chunkSize int64) {
	l.mu.Lock()
	limit := l.downloadBps
	if limit <= 0 {
		l.mu.Unlock()
		return
	}

	now := l.now()
	if l.windowStart.IsZero() {
		l.windowStart = now
	}
	elapsed := now.Sub(l.windowStart).Seconds()
	if elapsed >= 1 {
		l.windowStart = now
		l.windowBytes = 0
		elapsed = 0
	}

	projected := float64(l.windowBytes+chunkSize) / float64(limit)
	l.windowBytes += chunkSize

	var sleepFor time.Duration
	if projected > elapsed {
		d := projected - elapsed
		sleepFor = time.Duration(d * float64(time.Second))
		if sleepFor > maxSleep {
			sleepFor = maxSleep
		}
	}
	l.mu.Unlock()

	if sleepFor > 0 {
		l.sleep(sleepFor)
	}
}
