// Package quota implements the anonymous daily-usage repository using
// PostgreSQL. The check-and-increment goes through a database function so
// the read-modify-write is atomic at the store level, never in Go code.
package quota

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/jaqb8/lingocheck/internal/adapter/postgres"
)

const incrementSQL = `SELECT allowed, current_usage FROM increment_anonymous_daily_usage($1, $2, $3)`

// Repo provides daily-usage persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new quota repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// IncrementDailyUsage atomically consumes one quota slot for the identity
// and day. Returns whether the request was allowed and the usage counter
// after the call.
func (r *Repo) IncrementDailyUsage(ctx context.Context, ipHash string, day time.Time, limit int) (bool, int, error) {
	var (
		allowed bool
		usage   int
	)
	err := r.db.QueryRow(ctx, incrementSQL, ipHash, day, limit).Scan(&allowed, &usage)
	if err != nil {
		return false, 0, postgres.MapError(err, "increment daily usage")
	}
	return allowed, usage, nil
}

// GetDailyUsage reads the usage counter without consuming a slot.
// Returns 0 when the identity has not been seen today.
func (r *Repo) GetDailyUsage(ctx context.Context, ipHash string, day time.Time) (int, error) {
	query, args, err := sq.
		Select("usage_count").
		From("anonymous_daily_usage").
		Where(sq.Eq{"ip_hash": ipHash, "usage_date": day}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, postgres.MapError(err, "build daily usage query")
	}

	var usage int
	err = r.db.QueryRow(ctx, query, args...).Scan(&usage)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, postgres.MapError(err, "get daily usage")
	}
	return usage, nil
}
