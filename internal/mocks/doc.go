// Package mocks provides test doubles for the store and service interfaces:
// testify mocks for expectation-style tests and an in-memory MockUserStore
// that behaves like the users table.
package mocks
