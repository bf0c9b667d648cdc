package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/solarsite/internal/domain"
)

// sqlstates maps PostgreSQL error codes to domain sentinels. Codes not
// listed keep the driver error.
var sqlstates = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation: referenced project is gone
	"23502": domain.ErrValidation,    // not_null_violation
	"23514": domain.ErrValidation,    // check_violation (rating, status, capacity)
	"22P02": domain.ErrValidation,    // invalid_text_representation
	"22001": domain.ErrValidation,    // string_data_right_truncation
	"57014": domain.ErrTimeout,       // query_canceled (statement_timeout)
}

// MapError converts driver errors into domain sentinels, prefixed with the
// entity and, when known, its id. Context errors are wrapped but not
// mapped so callers can still tell a cancelled request from a missing row.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	subject := entity
	if id != uuid.Nil {
		subject = fmt.Sprintf("%s %s", entity, id)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", subject, err)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", subject, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := sqlstates[pgErr.Code]; ok {
			return fmt.Errorf("%s: %w (%s)", subject, sentinel, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w", subject, err)
}
