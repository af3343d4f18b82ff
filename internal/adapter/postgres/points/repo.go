// Package points implements the gamification points repository using
// PostgreSQL.
package points

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/jaqb8/lingocheck/internal/adapter/postgres"
)

const awardSQL = `SELECT award_analysis_point($1)`

// Repo provides point persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new points repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// AwardAnalysisPoint awards one point via the upsert function and returns
// the user's new total.
func (r *Repo) AwardAnalysisPoint(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, awardSQL, userID).Scan(&total); err != nil {
		return 0, postgres.MapError(err, "award analysis point")
	}
	return total, nil
}

// GetPoints reads the user's current point total.
// Returns 0 for users who have never earned a point.
func (r *Repo) GetPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := sq.
		Select("points").
		From("user_points").
		Where(sq.Eq{"user_id": userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, postgres.MapError(err, "build points query")
	}

	var total int
	err = r.db.QueryRow(ctx, query, args...).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, postgres.MapError(err, "get points")
	}
	return total, nil
}
