// Package api adapts the account service to HTTP. Handlers decode and
// validate JSON bodies, call service.AccountService, and map its errors to
// status codes and the {error, error_code, error_infos} response body.
// Responses only ever carry domain.User, never credential fields.
package api
