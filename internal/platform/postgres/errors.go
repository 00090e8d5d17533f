package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// mapError maps a database error onto the store sentinel vocabulary,
// preserving the original error for logs. Unique violations are refined by
// constraint name so callers can tell username, email, and slug conflicts
// apart.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", duplicateSentinel(pgErr.ConstraintName), err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

// duplicateSentinel picks the entity-specific duplicate sentinel from the
// violated constraint's name.
func duplicateSentinel(constraint string) error {
	switch {
	case strings.Contains(constraint, "username"):
		return store.ErrUsernameExists
	case strings.Contains(constraint, "email"):
		return store.ErrEmailExists
	case strings.Contains(constraint, "slug"):
		return store.ErrSlugExists
	default:
		return store.ErrDuplicate
	}
}
