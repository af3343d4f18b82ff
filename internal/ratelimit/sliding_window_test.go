package ratelimit

import (
	"sync"
	"testing"
	"time"
)

// newTestWindow creates a limiter with a controllable clock and no janitor.
func newTestWindow(maxRequests int, window time.Duration) (*SlidingWindow, *time.Time) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sw := &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		logs:        make(map[string][]time.Time),
		now:         func() time.Time { return current },
		stop:        make(chan struct{}),
	}
	return sw, &current
}

func TestSlidingWindow_AllowsUpToLimit(t *testing.T) {
	sw, _ := newTestWindow(10, time.Minute)

	for i := 0; i < 10; i++ {
		if !sw.Allow("ip:1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if sw.Allow("ip:1.2.3.4") {
		t.Error("request 11 should be denied")
	}
}

func TestSlidingWindow_DeniedRequestNotRecorded(t *testing.T) {
	sw, clock := newTestWindow(2, time.Minute)

	sw.Allow("id")
	sw.Allow("id")

	// Denied attempts must not extend the window.
	for i := 0; i < 5; i++ {
		*clock = clock.Add(time.Second)
		if sw.Allow("id") {
			t.Fatal("expected denial at capacity")
		}
	}

	// Both recorded entries expire 60s after they were made, regardless of
	// the denied attempts in between.
	*clock = clock.Add(56 * time.Second)
	if !sw.Allow("id") {
		t.Error("expected capacity after the window slid past the recorded entries")
	}
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	sw, clock := newTestWindow(2, time.Minute)

	sw.Allow("id")
	*clock = clock.Add(30 * time.Second)
	sw.Allow("id")

	if sw.Allow("id") {
		t.Fatal("expected denial at capacity")
	}

	// First entry exits at t+60s; only one slot frees up.
	*clock = clock.Add(31 * time.Second)
	if !sw.Allow("id") {
		t.Error("expected one slot after the oldest entry expired")
	}
	if sw.Allow("id") {
		t.Error("expected denial, second entry still inside the window")
	}
}

func TestSlidingWindow_TimeUntilReset(t *testing.T) {
	sw, clock := newTestWindow(1, time.Minute)

	if got := sw.TimeUntilReset("id"); got != 0 {
		t.Errorf("expected 0 for unseen identity, got %v", got)
	}

	sw.Allow("id")
	*clock = clock.Add(20 * time.Second)

	if got := sw.TimeUntilReset("id"); got != 40*time.Second {
		t.Errorf("expected 40s until reset, got %v", got)
	}
}

func TestSlidingWindow_IdentitiesAreIndependent(t *testing.T) {
	sw, _ := newTestWindow(1, time.Minute)

	if !sw.Allow("user:a") {
		t.Fatal("first identity should be allowed")
	}
	if !sw.Allow("user:b") {
		t.Error("second identity must not share the first identity's budget")
	}
	if sw.Allow("user:a") {
		t.Error("first identity should now be at capacity")
	}
}

func TestSlidingWindow_Reset(t *testing.T) {
	sw, _ := newTestWindow(1, time.Minute)

	sw.Allow("id")
	if sw.Allow("id") {
		t.Fatal("expected denial at capacity")
	}

	sw.Reset("id")
	if !sw.Allow("id") {
		t.Error("expected capacity after reset")
	}
}

func TestSlidingWindow_ConcurrentAllow(t *testing.T) {
	sw := New(50, time.Minute, 0)
	defer sw.Stop()

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- sw.Allow("shared")
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	if count != 50 {
		t.Errorf("expected exactly 50 allowed, got %d", count)
	}
}
