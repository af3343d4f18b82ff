package quota

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jaqb8/lingocheck/internal/config"
)

// fakeUsageRepo keeps counters in memory, mirroring the guarded-upsert
// semantics of the real store.
type fakeUsageRepo struct {
	counts   map[string]int
	lastHash string
	lastDay  time.Time
	err      error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[string]int)}
}

func (f *fakeUsageRepo) key(ipHash string, day time.Time) string {
	return ipHash + "|" + day.Format("2006-01-02")
}

func (f *fakeUsageRepo) IncrementDailyUsage(_ context.Context, ipHash string, day time.Time, limit int) (bool, int, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.lastHash = ipHash
	f.lastDay = day

	k := f.key(ipHash, day)
	if f.counts[k] >= limit {
		return false, f.counts[k], nil
	}
	f.counts[k]++
	return true, f.counts[k], nil
}

func (f *fakeUsageRepo) GetDailyUsage(_ context.Context, ipHash string, day time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.lastHash = ipHash
	f.lastDay = day
	return f.counts[f.key(ipHash, day)], nil
}

func testConfig(limit int) config.QuotaConfig {
	return config.QuotaConfig{DailyLimit: limit, IPHashSalt: "test-salt"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestService_CheckAndIncrement_ConsumesSlots(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewService(discardLogger(), repo, testConfig(3))

	for i := 0; i < 3; i++ {
		dec, err := svc.CheckAndIncrement(context.Background(), "1.2.3.4")
		if err != nil {
			t.Fatalf("CheckAndIncrement failed: %v", err)
		}
		if !dec.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if dec.Remaining != 3-(i+1) {
			t.Errorf("request %d: expected remaining %d, got %d", i+1, 3-(i+1), dec.Remaining)
		}
		if dec.Limit != 3 {
			t.Errorf("expected limit 3, got %d", dec.Limit)
		}
	}

	dec, err := svc.CheckAndIncrement(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("CheckAndIncrement failed: %v", err)
	}
	if dec.Allowed {
		t.Error("expected denial after limit exhausted")
	}
	if dec.Remaining != 0 {
		t.Errorf("expected remaining 0, got %d", dec.Remaining)
	}
}

func TestService_ResetAtIsNextUTCMidnight(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewService(discardLogger(), repo, testConfig(5))
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	}

	dec, err := svc.CheckAndIncrement(context.Background(), "1.2.3.4")
	if err != nil {
		t.Fatalf("CheckAndIncrement failed: %v", err)
	}

	want := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	if !dec.ResetAt.Equal(want) {
		t.Errorf("expected reset at %v, got %v", want, dec.ResetAt)
	}
	if !repo.lastDay.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected day key truncated to midnight, got %v", repo.lastDay)
	}
}

func TestService_DayRolloverUsesFreshCounter(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewService(discardLogger(), repo, testConfig(1))

	current := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	if dec, _ := svc.CheckAndIncrement(context.Background(), "ip"); !dec.Allowed {
		t.Fatal("first request of the day should be allowed")
	}
	if dec, _ := svc.CheckAndIncrement(context.Background(), "ip"); dec.Allowed {
		t.Fatal("second request should hit the limit")
	}

	current = current.Add(2 * time.Minute) // crosses midnight
	if dec, _ := svc.CheckAndIncrement(context.Background(), "ip"); !dec.Allowed {
		t.Error("counter should reset when the UTC date rolls over")
	}
}

func TestService_HashIsSaltedSHA256(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewService(discardLogger(), repo, testConfig(5))

	if _, err := svc.CheckAndIncrement(context.Background(), "10.0.0.1"); err != nil {
		t.Fatalf("CheckAndIncrement failed: %v", err)
	}

	sum := sha256.Sum256([]byte("10.0.0.1" + "test-salt"))
	want := hex.EncodeToString(sum[:])
	if repo.lastHash != want {
		t.Errorf("expected hash %s, got %s", want, repo.lastHash)
	}
	if repo.lastHash == "10.0.0.1" {
		t.Error("raw IP must never reach the store")
	}
}

func TestService_Status_DoesNotConsume(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewService(discardLogger(), repo, testConfig(5))

	if _, err := svc.CheckAndIncrement(context.Background(), "ip"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		dec, err := svc.Status(context.Background(), "ip")
		if err != nil {
			t.Fatalf("Status failed: %v", err)
		}
		if dec.Remaining != 4 {
			t.Errorf("expected remaining 4, got %d", dec.Remaining)
		}
	}
}

func TestService_RepoErrorIsWrapped(t *testing.T) {
	repo := newFakeUsageRepo()
	sentinel := errors.New("connection refused")
	repo.err = sentinel
	svc := NewService(discardLogger(), repo, testConfig(5))

	_, err := svc.CheckAndIncrement(context.Background(), "ip")
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped repo error, got %v", err)
	}
}
