package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/google/uuid"
)

// MockUserStore is an in-memory store.UserStore that enforces the same
// constraints as the users table: unique user_name and email, and an email
// that contains "@". Function fields override individual methods.
type MockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.DatabaseUser) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.DatabaseUser, error)
	UpdateFn     func(ctx context.Context, user *domain.DatabaseUser) error

	mu    sync.Mutex
	users map[uuid.UUID]domain.DatabaseUser
}

// NewMockUserStore creates an empty in-memory store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[uuid.UUID]domain.DatabaseUser)}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements the UserStore interface.
func (m *MockUserStore) Create(ctx context.Context, user *domain.DatabaseUser) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.ID]; exists {
		return store.NewConflictError(store.ErrDuplicate, "23505", "users_pkey", "id", "")
	}
	if err := m.checkConstraints(user); err != nil {
		return err
	}

	m.users[user.ID] = *user
	return nil
}

// GetByID implements the UserStore interface. The returned value is a copy.
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

// GetByIDForUpdate implements the UserStore interface. Row locking has no
// in-memory equivalent, so it behaves like GetByID.
func (m *MockUserStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.DatabaseUser, error) {
	return m.GetByID(ctx, id)
}

// GetByEmail implements the UserStore interface. The returned value is a copy.
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetAll implements the UserStore interface, ordered by creation time.
func (m *MockUserStore) GetAll(ctx context.Context) ([]*domain.DatabaseUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.DatabaseUser, 0, len(m.users))
	for _, u := range m.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update implements the UserStore interface.
func (m *MockUserStore) Update(ctx context.Context, user *domain.DatabaseUser) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if err := m.checkConstraints(user); err != nil {
		return err
	}

	next := *user
	next.CreatedAt = current.CreatedAt
	m.users[user.ID] = next
	return nil
}

// Truncate implements the UserStore interface.
func (m *MockUserStore) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = make(map[uuid.UUID]domain.DatabaseUser)
	return nil
}

// WithTx returns the same store; the mock has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// Len returns the number of stored users.
func (m *MockUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// checkConstraints must be called with m.mu held.
func (m *MockUserStore) checkConstraints(user *domain.DatabaseUser) error {
	for id, other := range m.users {
		if id == user.ID {
			continue
		}
		if other.UserName == user.UserName {
			return store.NewConflictError(store.ErrDuplicate, "23505", "users_user_name_key", "user_name",
				"Key (user_name)=("+user.UserName+") already exists.")
		}
		if other.Email == user.Email {
			return store.NewConflictError(store.ErrDuplicate, "23505", "users_email_key", "email",
				"Key (email)=("+user.Email+") already exists.")
		}
	}
	if !strings.Contains(user.Email, "@") {
		return store.NewConflictError(store.ErrCheckViolation, "23514", "users_email_check", "email", "")
	}
	return nil
}
