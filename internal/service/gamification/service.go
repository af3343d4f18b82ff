// Package gamification awards progress points for error-free analyses.
//
// Awards ride on the request lifecycle fire-and-forget: the HTTP response
// never waits on them and their failures are logged, not surfaced. A point
// can be lost if the process crashes between response and write; that
// window is accepted and bounded by draining in-flight awards on shutdown.
package gamification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const awardTimeout = 10 * time.Second

// pointsRepo is the persistence slice the service needs.
type pointsRepo interface {
	AwardAnalysisPoint(ctx context.Context, userID uuid.UUID) (total int, err error)
	GetPoints(ctx context.Context, userID uuid.UUID) (int, error)
}

// Service awards and reads gamification points.
type Service struct {
	log  *slog.Logger
	repo pointsRepo
	wg   sync.WaitGroup
}

// NewService creates a gamification Service.
func NewService(logger *slog.Logger, repo pointsRepo) *Service {
	return &Service{
		log:  logger.With("service", "gamification"),
		repo: repo,
	}
}

// AwardPoint synchronously awards one point and returns the new total.
func (s *Service) AwardPoint(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.AwardAnalysisPoint(ctx, userID)
}

// AwardPointAsync submits a best-effort point award that outlives the
// originating request: the goroutine gets its own timeout context, and a
// failure is swallowed after logging. requestID ties the log line back to
// the request that earned the point.
func (s *Service) AwardPointAsync(userID uuid.UUID, requestID string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), awardTimeout)
		defer cancel()

		total, err := s.repo.AwardAnalysisPoint(ctx, userID)
		if err != nil {
			s.log.Error("point award failed",
				slog.String("user_id", userID.String()),
				slog.String("request_id", requestID),
				slog.String("error", err.Error()),
			)
			return
		}

		s.log.Info("point awarded",
			slog.String("user_id", userID.String()),
			slog.String("request_id", requestID),
			slog.Int("total_points", total),
		)
	}()
}

// Points returns the user's current point total.
func (s *Service) Points(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetPoints(ctx, userID)
}

// Drain blocks until all in-flight awards finish. Called on shutdown.
func (s *Service) Drain() {
	s.wg.Wait()
}
