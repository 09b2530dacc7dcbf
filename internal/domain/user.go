package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the public view of an account.
// It never carries credential material and is safe to serialize to clients.
type User struct {
	ID        uuid.UUID `json:"id"`
	RealName  string    `json:"real_name"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credential is the stored salt and hash pair for a user's current password.
// Both fields are always written together.
type Credential struct {
	PasswordHash string `json:"-"`
	Salt         string `json:"-"`
}

// IsZero reports whether the credential has never been set.
func (c Credential) IsZero() bool {
	return c.PasswordHash == "" && c.Salt == ""
}

// DatabaseUser is the internal view of an account as held by the store.
// The secret fields live in the embedded Credential so that Public can drop
// them with a single field access.
type DatabaseUser struct {
	User
	Credential
}

// NewDatabaseUser builds a record for a brand-new account. Both timestamps are
// set to the same UTC instant.
func NewDatabaseUser(realName, userName, email string, cred Credential) *DatabaseUser {
	now := time.Now().UTC()
	return &DatabaseUser{
		User: User{
			ID:        uuid.New(),
			RealName:  realName,
			UserName:  userName,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Credential: cred,
	}
}

// Public returns the caller-facing view of the record.
func (u *DatabaseUser) Public() User {
	if u == nil {
		return User{}
	}
	return u.User
}

// PublicUsers maps a slice of records to their public views, preserving order.
func PublicUsers(users []*DatabaseUser) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out
}

// Validate checks the fields every persisted record must have.
func (u *DatabaseUser) Validate() error {
	switch {
	case u.ID == uuid.Nil:
		return ErrEmptyUserID
	case u.RealName == "":
		return ErrEmptyRealName
	case u.UserName == "":
		return ErrEmptyUserName
	case u.Email == "":
		return ErrEmptyEmail
	case u.PasswordHash == "" || u.Salt == "":
		return ErrEmptyCredential
	}
	return nil
}
