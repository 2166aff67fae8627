package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUndefinedTableCode = "42P01"

// MapError translates database errors to domain errors.
// It maps a PostgreSQL undefined_table error (42P01) to missingErr.
// Other errors are returned unchanged.
func MapError(err error, missingErr error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTableCode {
		return missingErr
	}

	return err
}
