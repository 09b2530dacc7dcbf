// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests call GetTestDBWithT, which skips when no database URL is
// configured and applies the embedded migrations otherwise. WithTx runs a test
// body inside a transaction that is always rolled back.
package testdb
