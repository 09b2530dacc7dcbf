package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a service failure.
type ErrorKind string

// Error kinds returned by AccountService.
const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindAlreadyExists      ErrorKind = "already_exists"
	KindInvalidEmailFormat ErrorKind = "invalid_email_format"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindCrypto             ErrorKind = "crypto"
	KindConfig             ErrorKind = "config"
)

// Error codes carried in Error.Code when no store code applies.
const (
	CodeMissingParams = "missing_params"
	CodeInvalidUUID   = "invalid_uuid"
	CodeNotFound      = "not_found"
	CodeUnauthorized  = "unauthorized"
	CodePasswordSize  = "password_too_long"
)

// Error is the single failure type returned by the service layer.
// Callers branch on Kind with errors.Is against the sentinels below.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of code and details.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is. They carry a Kind and nothing else.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrAlreadyExists      = &Error{Kind: KindAlreadyExists, Message: "user already exists"}
	ErrInvalidEmailFormat = &Error{Kind: KindInvalidEmailFormat, Message: "invalid email format"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrCrypto             = &Error{Kind: KindCrypto, Message: "stored credential is corrupt"}
	ErrConfig             = &Error{Kind: KindConfig, Message: "invalid configuration"}
)

// NewValidationError reports missing or malformed caller input.
func NewValidationError(code, message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Details: details}
}

// NewMissingParamsError lists the required parameters that were empty.
func NewMissingParamsError(names ...string) *Error {
	return NewValidationError(CodeMissingParams,
		"required paramethers missing "+strings.Join(names, ", "),
		map[string]string{"missing": strings.Join(names, ",")})
}

// NewNotFoundError reports a lookup that matched no user.
func NewNotFoundError(err error) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "user not found", Err: err}
}

// NewUnauthorizedError reports a credential mismatch.
func NewUnauthorizedError() *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: "unauthorized"}
}

// NewCryptoError reports a stored credential that could not be verified.
func NewCryptoError(err error) *Error {
	return &Error{Kind: KindCrypto, Code: "crypto", Message: "failed to verify credential", Err: err}
}

// NewConfigError reports a fatal startup misconfiguration.
func NewConfigError(err error) *Error {
	return &Error{Kind: KindConfig, Code: "config", Message: "invalid configuration", Err: err}
}
