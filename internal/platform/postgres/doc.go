// Package postgres implements store.UserStore on PostgreSQL through
// database/sql and the pgx stdlib driver. Constraint violations reported by
// the database are translated into store.ConflictError values so callers can
// tell uniqueness conflicts from email format rejections. Schema changes are
// embedded goose migrations applied by Migrate.
package postgres
