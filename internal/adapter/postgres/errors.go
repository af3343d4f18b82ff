package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jaqb8/lingocheck/internal/domain"
)

// Error tags a persistence failure with the DATABASE taxonomy kind so the
// transport layer can classify it without inspecting pgx internals.
type Error struct {
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("postgres: %s: %v", e.msg, e.cause)
	}
	return "postgres: " + e.msg
}

func (e *Error) ErrorKind() domain.ErrorKind { return domain.KindDatabase }

func (e *Error) Unwrap() error { return e.cause }

// MapError converts pgx/pgconn errors to domain-aware errors.
// Context cancellation passes through so errors.Is still matches it;
// pgx.ErrNoRows maps to domain.ErrNotFound; everything else is tagged as a
// database failure.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, domain.ErrAlreadyExists)
		case "23514": // check_violation
			return fmt.Errorf("%s: %w", op, domain.ErrValidation)
		}
	}

	return &Error{msg: op, cause: err}
}
