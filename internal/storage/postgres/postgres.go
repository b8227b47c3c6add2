// Package postgres implements the entity repositories on PostgreSQL via sqlx.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/m3rciful/lotbot/core/database"
	"github.com/m3rciful/lotbot/internal/domain"
)

// mapError translates driver errors into domain sentinels.
func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// requireAffected returns ErrNotFound when a keyed mutation touched no rows.
func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
