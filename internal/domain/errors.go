package domain

import "errors"

// Validation errors for account records.
var (
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrEmptyRealName   = errors.New("real name cannot be empty")
	ErrEmptyUserName   = errors.New("user name cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrEmptyCredential = errors.New("password hash and salt must both be set")
)
