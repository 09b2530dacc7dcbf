// Package store defines interfaces for data persistence operations and the
// errors implementations return. Implementations live under
// internal/platform.
package store
