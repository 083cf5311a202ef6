package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCombatantNotFound is returned when a combatant lookup yields no results.
var ErrCombatantNotFound = errors.New("combatant not found")

// ErrBoutNotFound is returned when no stored bout has the requested ID.
var ErrBoutNotFound = errors.New("bout not found")

// isForeignKeyError checks if a pgx error is a foreign key violation.
func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
