package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"     validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"   validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"       validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the process-wide credential secrets.
// These values are read once at startup and never change during a run.
type AuthConfig struct {
	// JWTSecret signs session tokens. Startup fails without it.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// Pepper is mixed into every password before hashing. It must never be
	// stored next to the salts and hashes.
	Pepper string `mapstructure:"pepper" validate:"required"`

	// TokenLifetimeMinutes is the default session token lifetime.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BcryptCost is the work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"omitempty,gte=10,lte=31"`
}

// TokenLifetime returns the configured token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RateLimitConfig throttles login attempts.
// An empty RedisURL selects the in-process limiter.
type RateLimitConfig struct {
	LoginPerMinute int    `mapstructure:"login_per_minute" validate:"gte=0"`
	RedisURL       string `mapstructure:"redis_url"        validate:"omitempty,url"`
}
