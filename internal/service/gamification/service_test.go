package gamification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type fakePointsRepo struct {
	mu     sync.Mutex
	points map[uuid.UUID]int
	err    error
	calls  int
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{points: make(map[uuid.UUID]int)}
}

func (f *fakePointsRepo) AwardAnalysisPoint(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.points[userID]++
	return f.points[userID], nil
}

func (f *fakePointsRepo) GetPoints(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.points[userID], nil
}

func TestService_AwardPoint(t *testing.T) {
	repo := newFakePointsRepo()
	svc := NewService(slog.New(slog.DiscardHandler), repo)
	userID := uuid.New()

	total, err := svc.AwardPoint(context.Background(), userID)
	if err != nil {
		t.Fatalf("AwardPoint failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}

	total, err = svc.AwardPoint(context.Background(), userID)
	if err != nil {
		t.Fatalf("AwardPoint failed: %v", err)
	}
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
}

func TestService_AwardPointAsync_CompletesAfterDrain(t *testing.T) {
	repo := newFakePointsRepo()
	svc := NewService(slog.New(slog.DiscardHandler), repo)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		svc.AwardPointAsync(userID, "req-1")
	}
	svc.Drain()

	total, err := svc.Points(context.Background(), userID)
	if err != nil {
		t.Fatalf("Points failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected 5 points after drain, got %d", total)
	}
}

func TestService_AwardPointAsync_SwallowsFailure(t *testing.T) {
	repo := newFakePointsRepo()
	repo.err = errors.New("db down")
	svc := NewService(slog.New(slog.DiscardHandler), repo)

	// Must not panic or surface the error anywhere.
	svc.AwardPointAsync(uuid.New(), "req-2")
	svc.Drain()

	if repo.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", repo.calls)
	}
}
