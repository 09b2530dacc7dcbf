// Package config loads service configuration from environment variables,
// an optional .env file, and an optional config.yaml. Environment variables
// win. The loaded Config is validated before it is returned, so callers can
// rely on the secrets being present.
package config
