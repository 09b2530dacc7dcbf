package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/cuddly-waffle/account-api/internal/service"
	"github.com/cuddly-waffle/account-api/internal/service/auth"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps service and token errors to HTTP status codes.
// Anything unrecognized is a 500.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrInvalidEmailFormat),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Service
// messages are built from fixed strings and are passed through; everything
// else gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var svcErr *service.Error
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		return "Given user already exists"
	case errors.Is(err, service.ErrInvalidEmailFormat):
		return "Invalid email format"
	case errors.Is(err, service.ErrNotFound):
		return "user not found"
	case errors.Is(err, service.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken):
		return "Invalid token"
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body required"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.As(err, &svcErr) && svcErr.Kind == service.KindValidation:
		return svcErr.Message
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a short message that
// names the offending JSON field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fieldErr := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fieldName(fieldErr), getValidationTagMessage(fieldErr.Tag()))
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return strings.ToLower(fe.StructField())
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "uuid", "uuid4":
		return "invalid uuid format"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message on 500s so the client learns which operation failed.
// Service errors contribute their code and details as error_code and
// error_infos.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if svcErr.Code != "" {
			opts = append(opts, shared.WithErrorCode(svcErr.Code))
		}
		if status != http.StatusInternalServerError {
			opts = append(opts, shared.WithErrorInfos(svcErr.Details))
		}
	}
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
