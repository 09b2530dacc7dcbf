package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuddly-waffle/account-api/internal/config"
	"github.com/cuddly-waffle/account-api/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minSecretLength is the shortest HMAC key accepted.
const minSecretLength = 32

// DefaultTokenLifetime applies when the configuration leaves it unset.
const DefaultTokenLifetime = 3 * time.Hour

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	signingKey    []byte
	tokenLifetime time.Duration
	timeFunc      func() time.Time // Injectable for testing
}

// jwtCustomClaims defines the structure of JWT claims we use
type jwtCustomClaims struct {
	UserID   uuid.UUID `json:"id"`
	UserName string    `json:"user_name"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
// A missing or short secret is a startup error wrapping ErrMissingSecret.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("%w: secret must be at least %d characters", ErrMissingSecret, minSecretLength)
	}

	lifetime := cfg.TokenLifetime()
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	return &hmacJWTService{
		signingKey:    []byte(cfg.JWTSecret),
		tokenLifetime: lifetime,
		timeFunc:      time.Now,
	}, nil
}

func (s *hmacJWTService) Lifetime() time.Duration {
	return s.tokenLifetime
}

// Sign creates a signed JWT carrying the user's id and handle.
func (s *hmacJWTService) Sign(ctx context.Context, claims SignClaims, opts ...SignOption) (string, error) {
	issued, err := s.Issue(ctx, claims, opts...)
	if err != nil {
		return "", err
	}
	return issued.Token, nil
}

// Issue implements JWTService.Issue.
func (s *hmacJWTService) Issue(ctx context.Context, claims SignClaims, opts ...SignOption) (*IssuedToken, error) {
	log := logger.FromContext(ctx)

	o := signOptions{expiresIn: s.tokenLifetime}
	for _, opt := range opts {
		opt(&o)
	}
	if o.subject == "" {
		o.subject = claims.ID.String()
	}
	if o.expiresIn <= 0 {
		o.expiresIn = s.tokenLifetime
	}

	now := s.timeFunc().UTC()
	expiresAt := jwt.NewNumericDate(now.Add(o.expiresIn))
	tokenClaims := jwtCustomClaims{
		UserID:   claims.ID,
		UserName: claims.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   o.subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims)
	signedToken, err := token.SignedString(s.signingKey)
	if err != nil {
		log.Error("failed to sign JWT",
			"error", err,
			"user_id", claims.ID,
			"signing_method", jwt.SigningMethodHS256.Name)
		return nil, fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return &IssuedToken{Token: signedToken, ExpiresAt: expiresAt.Time.UTC()}, nil
}

// Verify validates a JWT and returns its claims.
func (s *hmacJWTService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	parsed := &jwtCustomClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		parsed,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			// Signature and structure were valid, so the expiry claim is trustworthy.
			expiredAt := time.Time{}
			if parsed.ExpiresAt != nil {
				expiredAt = parsed.ExpiresAt.Time.UTC()
			}
			log.Debug("token validation failed: token expired",
				"error", err,
				"expired_at", expiredAt)
			return nil, &TokenExpiredError{ExpiredAt: expiredAt}
		case errors.Is(err, jwt.ErrTokenMalformed):
			log.Debug("token validation failed: malformed token", "error", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			log.Debug("token validation failed: invalid signature", "error", err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			log.Debug("token validation failed: wrong issuer", "error", err)
		default:
			log.Debug("token validation failed: other validation error",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		log.Debug("token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:   parsed.UserID,
		UserName: parsed.UserName,
		Subject:  parsed.Subject,
		Issuer:   parsed.Issuer,
		ID:       parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}

	log.Debug("token validated successfully",
		"user_id", claims.UserID,
		"token_id", claims.ID,
		"expiry", claims.ExpiresAt)

	return claims, nil
}
