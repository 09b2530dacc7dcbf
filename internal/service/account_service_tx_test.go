package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/mocks"
	"github.com/cuddly-waffle/account-api/internal/platform/postgres"
	"github.com/cuddly-waffle/account-api/internal/service"
	"github.com/cuddly-waffle/account-api/internal/service/auth"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangePasswordRunsInTransaction(t *testing.T) {
	crypto := auth.NewTestPasswordCrypto()
	cred, err := crypto.HashPassword("old")
	require.NoError(t, err)
	user := domain.NewDatabaseUser("R", "r", "r@x", cred)

	t.Run("commits on success", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		users := &mocks.UserStore{}
		users.On("WithTx", mock.Anything).Return(users)
		users.On("GetByIDForUpdate", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.DatabaseUser) bool {
			return u.ID == user.ID && u.Salt != user.Salt
		})).Return(nil)

		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		svc, err := service.NewAccountService(users, db, crypto, auth.RequireTestJWTService(t), nil)
		require.NoError(t, err)

		_, err = svc.ChangePassword(context.Background(), user.ID.String(), "old", "new")
		require.NoError(t, err)

		users.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("rolls back on conflict", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		conflict := store.NewConflictError(store.ErrDuplicate, "23505", "users_email_key", "email", "")
		users := &mocks.UserStore{}
		users.On("WithTx", mock.Anything).Return(users)
		users.On("GetByIDForUpdate", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.Anything).Return(conflict)

		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		svc, err := service.NewAccountService(users, db, crypto, auth.RequireTestJWTService(t), nil)
		require.NoError(t, err)

		_, err = svc.UpdateProfile(context.Background(), user.ID.String(), service.ProfileUpdate{Email: "dup@x"})
		assert.ErrorIs(t, err, service.ErrAlreadyExists)
		assert.True(t, errors.Is(err, store.ErrDuplicate))

		users.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

// The row read for a read-modify-write must be locked, otherwise a concurrent
// password change committed between read and write is overwritten with the
// stale credential.
func TestUpdatesLockRowBeforeWriting(t *testing.T) {
	crypto := auth.NewTestPasswordCrypto()
	cred, err := crypto.HashPassword("old")
	require.NoError(t, err)
	user := domain.NewDatabaseUser("R", "r", "r@x", cred)

	lockingSelect := regexp.QuoteMeta(
		"SELECT id, real_name, user_name, email, password, salt, created_at, updated_at FROM users WHERE id = $1 FOR UPDATE")
	update := regexp.QuoteMeta("UPDATE users")
	row := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "real_name", "user_name", "email", "password", "salt", "created_at", "updated_at"}).
			AddRow(user.ID.String(), user.RealName, user.UserName, user.Email, user.PasswordHash, user.Salt,
				user.CreatedAt, user.UpdatedAt)
	}

	tests := []struct {
		name string
		run  func(svc service.AccountService) error
	}{
		{
			name: "update profile",
			run: func(svc service.AccountService) error {
				_, err := svc.UpdateProfile(context.Background(), user.ID.String(), service.ProfileUpdate{RealName: "New"})
				return err
			},
		},
		{
			name: "change password",
			run: func(svc service.AccountService) error {
				_, err := svc.ChangePassword(context.Background(), user.ID.String(), "old", "new")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, sqlMock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			sqlMock.ExpectBegin()
			sqlMock.ExpectQuery(lockingSelect).WithArgs(user.ID).WillReturnRows(row())
			sqlMock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
			sqlMock.ExpectCommit()

			svc, err := service.NewAccountService(postgres.NewPostgresUserStore(db, nil), db, crypto,
				auth.RequireTestJWTService(t), nil)
			require.NoError(t, err)

			require.NoError(t, tt.run(svc))
			assert.NoError(t, sqlMock.ExpectationsWereMet())
		})
	}
}
