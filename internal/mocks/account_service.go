package mocks

import (
	"context"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// AccountService is a testify mock of service.AccountService.
type AccountService struct {
	mock.Mock
}

var _ service.AccountService = (*AccountService)(nil)

func (m *AccountService) Create(
	ctx context.Context,
	realName, userName, email, password string,
) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, realName, userName, email, password)
	return userArg(args, 0), args.Error(1)
}

func (m *AccountService) GetByID(ctx context.Context, id string) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, id)
	return userArg(args, 0), args.Error(1)
}

func (m *AccountService) GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *AccountService) GetAll(ctx context.Context) ([]*domain.DatabaseUser, error) {
	args := m.Called(ctx)
	if users, ok := args.Get(0).([]*domain.DatabaseUser); ok {
		return users, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AccountService) UpdateProfile(
	ctx context.Context,
	id string,
	upd service.ProfileUpdate,
) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, id, upd)
	return userArg(args, 0), args.Error(1)
}

func (m *AccountService) ChangePassword(
	ctx context.Context,
	id, oldPassword, newPassword string,
) (*domain.DatabaseUser, error) {
	args := m.Called(ctx, id, oldPassword, newPassword)
	return userArg(args, 0), args.Error(1)
}

func (m *AccountService) Authenticate(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if res, ok := args.Get(0).(*service.AuthResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func userArg(args mock.Arguments, i int) *domain.DatabaseUser {
	if user, ok := args.Get(i).(*domain.DatabaseUser); ok {
		return user
	}
	return nil
}
