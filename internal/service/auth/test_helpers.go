package auth

import (
	"testing"
	"time"

	"github.com/cuddly-waffle/account-api/internal/config"
	"github.com/stretchr/testify/require"
)

// TestSecret is a signing secret long enough for NewJWTService.
const TestSecret = "test-jwt-secret-that-is-32-chars-long"

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            TestSecret,
		Pepper:               "test-pepper",
		TokenLifetimeMinutes: 60,
		BcryptCost:           DefaultBcryptCost,
	}
}

// RequireTestJWTService creates a JWT service from DefaultJWTConfig and fails
// the test if construction fails.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "Failed to create test JWT service")
	return svc
}

// NewTestJWTService creates a JWT service with a fixed clock.
func NewTestJWTService(secret string, lifetime time.Duration, timeFunc func() time.Time) JWTService {
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      timeFunc,
	}
}

// NewTestPasswordCrypto returns a PasswordCrypto using the minimum cost and a
// fixed test pepper.
func NewTestPasswordCrypto() *BcryptCrypto {
	return NewPasswordCrypto(DefaultJWTConfig().Pepper, DefaultBcryptCost)
}
