package store

import (
	"context"
	"database/sql"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/google/uuid"
)

// UserStore defines the interface for user data persistence.
// Uniqueness of user names and emails and the email format check are
// enforced by the store, not by callers.
type UserStore interface {
	// Create inserts a new user.
	// Returns a *ConflictError wrapping ErrDuplicate when the user name or
	// email is taken, or wrapping ErrCheckViolation when the email is rejected.
	Create(ctx context.Context, user *domain.DatabaseUser) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error)

	// GetByIDForUpdate retrieves a user and locks the row with SELECT FOR UPDATE
	// until the surrounding transaction ends. Use it for read-modify-write
	// inside a transaction. Returns ErrUserNotFound if the user does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error)

	// GetAll returns every user ordered by creation time.
	GetAll(ctx context.Context) ([]*domain.DatabaseUser, error)

	// Update replaces every mutable column of an existing user, credential included.
	// Returns ErrUserNotFound if the user does not exist, and the same
	// conflict errors as Create.
	Update(ctx context.Context, user *domain.DatabaseUser) error

	// Truncate removes every user. Intended for test resets only.
	Truncate(ctx context.Context) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
