package mocks

import (
	"context"
	"database/sql"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// UserStore is a testify mock of store.UserStore.
type UserStore struct {
	mock.Mock
}

var _ store.UserStore = (*UserStore)(nil)

func (m *UserStore) Create(ctx context.Context, user *domain.DatabaseUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.DatabaseUser); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.DatabaseUser); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.DatabaseUser); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) GetAll(ctx context.Context) ([]*domain.DatabaseUser, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]*domain.DatabaseUser); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, user *domain.DatabaseUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserStore) Truncate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// WithTx returns the configured store, or the mock itself when none is set.
func (m *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.UserStore); ok {
		return ret
	}
	return m
}
