package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// constraintColumns maps named constraints on users to the column they guard.
var constraintColumns = map[string]string{
	"users_user_name_key": "user_name",
	"users_email_key":     "email",
	"users_email_check":   "email",
	"users_pkey":          "id",
}

// MapError maps a database error to the store error taxonomy.
// Unique and check violations become *store.ConflictError carrying the
// SQLSTATE and constraint name; anything unrecognized is returned unchanged.
func MapError(err error) error {
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
			return newConflict(store.ErrDuplicate, pgErr)
		case checkViolationCode:
			return newConflict(store.ErrCheckViolation, pgErr)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

func newConflict(kind error, pgErr *pgconn.PgError) *store.ConflictError {
	column := pgErr.ColumnName
	if column == "" {
		column = constraintColumns[pgErr.ConstraintName]
	}
	return store.NewConflictError(kind, pgErr.Code, pgErr.ConstraintName, column, pgErr.Detail)
}

// CheckRowsAffected returns notFound when result reports zero affected rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
