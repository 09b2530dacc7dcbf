// Package service holds the account business rules. AccountService sits
// between the password and token primitives in service/auth and the
// persistence contract in store, and translates store failures into the
// typed *Error values the API layer maps to responses.
//
// Uniqueness is never pre-checked here: the store's constraints decide, and
// their conflicts surface as AlreadyExists or InvalidEmailFormat errors that
// carry the database code and constraint details.
package service
