package api

import (
	"errors"
	"net/http"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/go-chi/chi/v5"
)

// decodeAndValidate decodes the JSON body into v and validates it. On
// failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decode(w, r, v, false)
}

// decodeOptionalAndValidate is decodeAndValidate for bodies whose fields are
// all optional: a missing body leaves v at its zero value.
func decodeOptionalAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decode(w, r, v, true)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			if allowEmpty {
				return true
			}
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err,
			shared.WithErrorCode("invalid_json"))
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err,
			shared.WithErrorCode("validation"))
		return false
	}
	return true
}

// pathParam returns the named chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
