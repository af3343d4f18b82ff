package points

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/jaqb8/lingocheck/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRepo_AwardAnalysisPoint(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(awardSQL)).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"award_analysis_point"}).AddRow(7))

	total, err := repo.AwardAnalysisPoint(context.Background(), userID)
	if err != nil {
		t.Fatalf("AwardAnalysisPoint failed: %v", err)
	}
	if total != 7 {
		t.Errorf("expected total 7, got %d", total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRepo_AwardAnalysisPoint_DatabaseError(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(awardSQL)).
		WithArgs(userID).
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.AwardAnalysisPoint(context.Background(), userID)
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.KindOf(err) != domain.KindDatabase {
		t.Errorf("expected DATABASE kind, got %s", domain.KindOf(err))
	}
}

func TestRepo_GetPoints_UnseenUserIsZero(t *testing.T) {
	mock := newMock(t)
	repo := New(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT points FROM user_points").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"points"}))

	total, err := repo.GetPoints(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetPoints failed: %v", err)
	}
	if total != 0 {
		t.Errorf("expected 0 for unseen user, got %d", total)
	}
}
