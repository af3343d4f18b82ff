// Package ratelimit provides a process-local sliding-window-log request
// limiter. State is volatile by design: a restart or horizontal scaling
// resets all counters, which is an accepted limitation for this layer
// (the daily quota provides the durable cap).
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow limits each identity to maxRequests within a trailing
// window. It stores per-identity request timestamps and prunes stale ones
// on every check, so the window slides rather than resets on a fixed
// boundary. Prune-and-append runs under one lock, keeping the check a
// single critical section per identity.
type SlidingWindow struct {
	maxRequests int
	window      time.Duration

	mu   sync.Mutex
	logs map[string][]time.Time

	now  func() time.Time
	stop chan struct{}
}

// New creates a SlidingWindow and starts a janitor goroutine that drops
// identities with no surviving timestamps. Call Stop on shutdown.
func New(maxRequests int, window, cleanupInterval time.Duration) *SlidingWindow {
	sw := &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		logs:        make(map[string][]time.Time),
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go sw.cleanup(cleanupInterval)
	return sw
}

// Stop terminates the janitor goroutine.
func (sw *SlidingWindow) Stop() {
	close(sw.stop)
}

// Allow records and permits the request if the identity has capacity.
// A denied request is not recorded and does not extend the window.
func (sw *SlidingWindow) Allow(identity string) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	entries := sw.prune(identity, now)

	if len(entries) >= sw.maxRequests {
		sw.logs[identity] = entries
		return false
	}

	sw.logs[identity] = append(entries, now)
	return true
}

// Remaining reports how many requests the identity has left in the window.
func (sw *SlidingWindow) Remaining(identity string) int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	entries := sw.prune(identity, sw.now())
	sw.logs[identity] = entries

	if n := sw.maxRequests - len(entries); n > 0 {
		return n
	}
	return 0
}

// TimeUntilReset reports how long until the oldest surviving timestamp
// exits the window, which is when capacity next frees up. Zero when the
// identity has no surviving history.
func (sw *SlidingWindow) TimeUntilReset(identity string) time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	entries := sw.prune(identity, now)
	sw.logs[identity] = entries

	if len(entries) == 0 {
		return 0
	}

	until := entries[0].Add(sw.window).Sub(now)
	if until < 0 {
		return 0
	}
	return until
}

// Reset clears all recorded requests for the identity.
func (sw *SlidingWindow) Reset(identity string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	delete(sw.logs, identity)
}

// prune drops timestamps older than the window. Caller must hold mu.
func (sw *SlidingWindow) prune(identity string, now time.Time) []time.Time {
	windowStart := now.Add(-sw.window)
	entries := sw.logs[identity]
	pruned := entries[:0]
	for _, ts := range entries {
		if ts.After(windowStart) {
			pruned = append(pruned, ts)
		}
	}
	return pruned
}

func (sw *SlidingWindow) cleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.stop:
			return
		case <-ticker.C:
			sw.mu.Lock()
			now := sw.now()
			for identity := range sw.logs {
				pruned := sw.prune(identity, now)
				if len(pruned) == 0 {
					delete(sw.logs, identity)
				} else {
					sw.logs[identity] = pruned
				}
			}
			sw.mu.Unlock()
		}
	}
}
