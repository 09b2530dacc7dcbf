package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/platform/logger"
	"github.com/cuddly-waffle/account-api/internal/service/auth"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/google/uuid"
)

// AccountService provides the account lifecycle operations.
// Every failure it returns is a *Error except unrecognized store errors,
// which are passed through wrapped.
type AccountService interface {
	// Create hashes the password and stores a new user.
	Create(ctx context.Context, realName, userName, email, password string) (*domain.DatabaseUser, error)

	// GetByID looks up a user by the string form of their id.
	GetByID(ctx context.Context, id string) (*domain.DatabaseUser, error)

	// GetByEmail looks up a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error)

	// GetAll returns every user.
	GetAll(ctx context.Context) ([]*domain.DatabaseUser, error)

	// UpdateProfile rewrites every field, keeping stored values for empty
	// fields in upd. The credential is replaced only when upd.Password is set.
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.DatabaseUser, error)

	// ChangePassword replaces the credential after verifying oldPassword.
	ChangePassword(ctx context.Context, id, oldPassword, newPassword string) (*domain.DatabaseUser, error)

	// Authenticate verifies an email and password and issues a session token.
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
}

// ProfileUpdate holds optional replacement values. Empty means "keep".
type ProfileUpdate struct {
	RealName string
	UserName string
	Email    string
	Password string
}

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

type accountServiceImpl struct {
	users  store.UserStore
	db     *sql.DB
	crypto auth.PasswordCrypto
	tokens auth.JWTService
	logger *slog.Logger
	now    func() time.Time
}

var _ AccountService = (*accountServiceImpl)(nil)

// Option configures an AccountService.
type Option func(*accountServiceImpl)

// WithClock replaces the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *accountServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAccountService creates an AccountService. When db is non-nil, the
// read-modify-write operations run inside a transaction on it.
func NewAccountService(
	users store.UserStore,
	db *sql.DB,
	crypto auth.PasswordCrypto,
	tokens auth.JWTService,
	logger *slog.Logger,
	opts ...Option,
) (AccountService, error) {
	if users == nil {
		return nil, NewConfigError(errors.New("user store cannot be nil"))
	}
	if crypto == nil {
		return nil, NewConfigError(errors.New("password crypto cannot be nil"))
	}
	if tokens == nil {
		return nil, NewConfigError(auth.ErrMissingSecret)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &accountServiceImpl{
		users:  users,
		db:     db,
		crypto: crypto,
		tokens: tokens,
		logger: logger.With("component", "account_service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *accountServiceImpl) Create(
	ctx context.Context,
	realName, userName, email, password string,
) (*domain.DatabaseUser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if missing := missingParams(
		"real_name", realName,
		"user_name", userName,
		"email", email,
		"password", password,
	); len(missing) > 0 {
		return nil, NewMissingParamsError(missing...)
	}

	cred, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	user := domain.NewDatabaseUser(realName, userName, email, cred)
	user.CreatedAt = s.now().UTC()
	user.UpdatedAt = user.CreatedAt

	if err := s.users.Create(ctx, user); err != nil {
		log.Debug("failed to create user", "error", err, "user_name", userName)
		return nil, translateStoreError(err, "failed to create user")
	}

	log.Info("user created", "user_id", user.ID)
	return user, nil
}

func (s *accountServiceImpl) GetByID(ctx context.Context, id string) (*domain.DatabaseUser, error) {
	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "failed to retrieve user")
	}
	return user, nil
}

func (s *accountServiceImpl) GetByEmail(ctx context.Context, email string) (*domain.DatabaseUser, error) {
	if email == "" {
		return nil, NewMissingParamsError("email")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, translateStoreError(err, "failed to retrieve user by email")
	}
	return user, nil
}

func (s *accountServiceImpl) GetAll(ctx context.Context) ([]*domain.DatabaseUser, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, translateStoreError(err, "failed to list users")
	}
	return users, nil
}

func (s *accountServiceImpl) UpdateProfile(
	ctx context.Context,
	id string,
	upd ProfileUpdate,
) (*domain.DatabaseUser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var updated *domain.DatabaseUser
	err = s.withinTx(ctx, func(ctx context.Context, users store.UserStore) error {
		current, err := users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return translateStoreError(err, "failed to retrieve user for update")
		}

		next := *current
		next.RealName = orDefault(upd.RealName, current.RealName)
		next.UserName = orDefault(upd.UserName, current.UserName)
		next.Email = orDefault(upd.Email, current.Email)

		if upd.Password != "" {
			cred, err := s.hash(upd.Password)
			if err != nil {
				return err
			}
			next.Credential = cred
		}
		next.UpdatedAt = s.now().UTC()

		if err := users.Update(ctx, &next); err != nil {
			return translateStoreError(err, "failed to update user")
		}
		updated = &next
		return nil
	})
	if err != nil {
		log.Debug("profile update failed", "error", err, "user_id", userID)
		return nil, err
	}

	log.Info("user profile updated",
		"user_id", userID,
		"password_changed", upd.Password != "")
	return updated, nil
}

func (s *accountServiceImpl) ChangePassword(
	ctx context.Context,
	id, oldPassword, newPassword string,
) (*domain.DatabaseUser, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if oldPassword == "" || newPassword == "" {
		return nil, NewValidationError(CodeMissingParams,
			"new_password and old_password params required",
			map[string]string{"missing": "old_password,new_password"})
	}

	userID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var updated *domain.DatabaseUser
	err = s.withinTx(ctx, func(ctx context.Context, users store.UserStore) error {
		current, err := users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return translateStoreError(err, "failed to retrieve user for password change")
		}

		if err := s.verify(oldPassword, current.Credential); err != nil {
			return err
		}

		cred, err := s.hash(newPassword)
		if err != nil {
			return err
		}

		next := *current
		next.Credential = cred
		next.UpdatedAt = s.now().UTC()

		if err := users.Update(ctx, &next); err != nil {
			return translateStoreError(err, "failed to store new password")
		}
		updated = &next
		return nil
	})
	if err != nil {
		log.Debug("password change failed", "error", err, "user_id", userID)
		return nil, err
	}

	log.Info("user password changed", "user_id", userID)
	return updated, nil
}

func (s *accountServiceImpl) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if missing := missingParams("email", email, "password", password); len(missing) > 0 {
		return nil, NewMissingParamsError(missing...)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, translateStoreError(err, "failed to retrieve user for login")
	}

	if err := s.verify(password, user.Credential); err != nil {
		log.Debug("login rejected", "user_id", user.ID, "error", err)
		return nil, err
	}

	issued, err := s.tokens.Issue(ctx, auth.SignClaims{ID: user.ID, UserName: user.UserName})
	if err != nil {
		log.Error("failed to sign session token", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	log.Info("user authenticated", "user_id", user.ID)
	return &AuthResult{
		User:      user.Public(),
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// withinTx runs fn against a transaction-bound store when a database handle
// is available, and against the plain store otherwise.
func (s *accountServiceImpl) withinTx(
	ctx context.Context,
	fn func(ctx context.Context, users store.UserStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.users)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.users.WithTx(tx))
	})
}

func (s *accountServiceImpl) hash(password string) (domain.Credential, error) {
	cred, err := s.crypto.HashPassword(password)
	switch {
	case err == nil:
		return cred, nil
	case errors.Is(err, auth.ErrEmptyPassword):
		return domain.Credential{}, NewMissingParamsError("password")
	case errors.Is(err, auth.ErrPasswordTooLong):
		return domain.Credential{}, NewValidationError(CodePasswordSize, "password is too long", nil)
	default:
		return domain.Credential{}, fmt.Errorf("failed to hash password: %w", err)
	}
}

func (s *accountServiceImpl) verify(password string, cred domain.Credential) error {
	ok, err := s.crypto.CompareHash(password, cred.Salt, cred.PasswordHash)
	if err != nil {
		return NewCryptoError(err)
	}
	if !ok {
		return NewUnauthorizedError()
	}
	return nil
}

// translateStoreError maps store failures onto the service taxonomy.
// Errors it does not recognize are wrapped with msg and returned.
func translateStoreError(err error, msg string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}

	if store.IsNotFoundError(err) {
		return NewNotFoundError(err)
	}

	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		details := map[string]string{}
		if conflict.Constraint != "" {
			details["constraint"] = conflict.Constraint
		}
		if conflict.Column != "" {
			details["column"] = conflict.Column
		}
		if conflict.Detail != "" {
			details["detail"] = conflict.Detail
		}

		if errors.Is(conflict, store.ErrCheckViolation) {
			return &Error{
				Kind:    KindInvalidEmailFormat,
				Code:    conflict.Code,
				Message: "invalid email format",
				Details: details,
				Err:     err,
			}
		}
		return &Error{
			Kind:    KindAlreadyExists,
			Code:    conflict.Code,
			Message: "user already exists",
			Details: details,
			Err:     err,
		}
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func parseID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.Nil, NewMissingParamsError("id")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, NewValidationError(CodeInvalidUUID, "id must be a valid uuid",
			map[string]string{"id": id})
	}
	return parsed, nil
}

// missingParams takes name/value pairs and returns the names with empty values.
func missingParams(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
