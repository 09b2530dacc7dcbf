package auth

import (
	"errors"
	"fmt"
	"time"
)

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrMissingSecret indicates the token signing secret is absent or too weak.
	// It is only returned at construction time.
	ErrMissingSecret = errors.New("token signing secret is not configured")

	// ErrEmptyPassword indicates an empty plaintext was given for hashing.
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrPasswordTooLong indicates a plaintext longer than MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("password is too long")

	// ErrMalformedHash indicates a stored hash could not be parsed by bcrypt.
	ErrMalformedHash = errors.New("stored password hash is malformed")
)

// TokenExpiredError is returned by Verify when a well-formed token is past its
// expiry. It matches ErrExpiredToken with errors.Is.
type TokenExpiredError struct {
	ExpiredAt time.Time
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("%s at %s", ErrExpiredToken.Error(), e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *TokenExpiredError) Unwrap() error {
	return ErrExpiredToken
}
