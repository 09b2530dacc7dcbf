//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/platform/postgres"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/cuddly-waffle/account-api/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(userName, email string) *domain.DatabaseUser {
	return domain.NewDatabaseUser("Real "+userName, userName, email, domain.Credential{
		PasswordHash: "$2a$10$hash",
		Salt:         "salt",
	})
}

func TestUserStoreIntegration(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresUserStore(tx, nil)

		u := newUser("ruan_AAA", "ruan@AAA")
		require.NoError(t, s.Create(ctx, u))

		got, err := s.GetByEmail(ctx, "ruan@AAA")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Credential, got.Credential)

		_, err = s.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		got.Email = "ruan@BBB"
		require.NoError(t, s.Update(ctx, got))
		reread, err := s.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ruan@BBB", reread.Email)
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresUserStore(tx, nil)
		require.NoError(t, s.Create(ctx, newUser("dup", "dup@x")))

		err := s.Create(ctx, newUser("dup", "other@x"))
		var ce *store.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "23505", ce.Code)
		assert.Equal(t, "user_name", ce.Column)
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		s := postgres.NewPostgresUserStore(tx, nil)

		// The check only requires an @, so a bare "example@" is accepted.
		require.NoError(t, s.Create(ctx, newUser("loose", "example@")))

		err := s.Create(ctx, newUser("bad", "Badly formatted"))
		assert.ErrorIs(t, err, store.ErrCheckViolation)
	})
}
