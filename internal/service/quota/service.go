// Package quota tracks anonymous daily usage. Callers are identified by a
// salted hash of their IP; the counter lives in PostgreSQL and resets at
// UTC midnight when the date component of the key rolls over.
package quota

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaqb8/lingocheck/internal/config"
)

// usageRepo is the persistence slice the service needs. IncrementDailyUsage
// must be atomic at the store level: concurrent calls for the same identity
// with one remaining slot yield exactly one allowed=true.
type usageRepo interface {
	IncrementDailyUsage(ctx context.Context, ipHash string, day time.Time, limit int) (allowed bool, currentUsage int, err error)
	GetDailyUsage(ctx context.Context, ipHash string, day time.Time) (int, error)
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Service implements the anonymous daily quota.
type Service struct {
	log   *slog.Logger
	repo  usageRepo
	limit int
	salt  string
	now   func() time.Time
}

// NewService creates a quota Service. Running with the default salt is an
// accepted operational risk: identities become guessable, so it is logged
// loudly rather than rejected.
func NewService(logger *slog.Logger, repo usageRepo, cfg config.QuotaConfig) *Service {
	log := logger.With("service", "quota")
	if cfg.IPHashSalt == config.DefaultIPHashSalt {
		log.Warn("quota IP-hash salt is the insecure default; set QUOTA_IP_HASH_SALT in production")
	}
	return &Service{
		log:   log,
		repo:  repo,
		limit: cfg.DailyLimit,
		salt:  cfg.IPHashSalt,
		now:   time.Now,
	}
}

// CheckAndIncrement consumes one quota slot for the given IP, atomically.
// When the daily limit is already reached, nothing is consumed and the
// decision reports Allowed=false with the next reset time.
func (s *Service) CheckAndIncrement(ctx context.Context, ip string) (Decision, error) {
	now := s.now().UTC()
	day := truncateToDay(now)

	allowed, usage, err := s.repo.IncrementDailyUsage(ctx, s.hashIP(ip), day, s.limit)
	if err != nil {
		return Decision{}, fmt.Errorf("quota: increment daily usage: %w", err)
	}

	dec := Decision{
		Allowed:   allowed,
		Remaining: max(0, s.limit-usage),
		Limit:     s.limit,
		ResetAt:   nextUTCMidnight(now),
	}

	if !allowed {
		s.log.InfoContext(ctx, "daily quota exhausted",
			slog.Int("limit", s.limit),
			slog.Time("reset_at", dec.ResetAt),
		)
	}

	return dec, nil
}

// Status reports the current quota state without consuming a slot.
func (s *Service) Status(ctx context.Context, ip string) (Decision, error) {
	now := s.now().UTC()
	day := truncateToDay(now)

	usage, err := s.repo.GetDailyUsage(ctx, s.hashIP(ip), day)
	if err != nil {
		return Decision{}, fmt.Errorf("quota: get daily usage: %w", err)
	}

	return Decision{
		Allowed:   usage < s.limit,
		Remaining: max(0, s.limit-usage),
		Limit:     s.limit,
		ResetAt:   nextUTCMidnight(now),
	}, nil
}

// hashIP derives the stable anonymous identity: SHA-256(ip + salt), hex.
func (s *Service) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nextUTCMidnight is the fixed daily reset boundary, independent of when
// the first request of the day arrived.
func nextUTCMidnight(t time.Time) time.Time {
	return truncateToDay(t).AddDate(0, 0, 1)
}
