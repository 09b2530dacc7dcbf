package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Issuer identifies this service in every token it signs.
const Issuer = "cuddly-waffle-fantastic"

// JWTService defines operations for issuing and verifying session tokens.
type JWTService interface {
	// Sign creates a signed token for the given claims. The issuer, token id,
	// subject, issued-at and expiry are filled in by the service.
	Sign(ctx context.Context, claims SignClaims, opts ...SignOption) (string, error)

	// Issue is Sign that also reports the expiry written into the token.
	Issue(ctx context.Context, claims SignClaims, opts ...SignOption) (*IssuedToken, error)

	// Verify checks the signature and expiry of tokenString and returns its
	// claims. Expired tokens yield *TokenExpiredError; every other rejection
	// yields ErrInvalidToken.
	Verify(ctx context.Context, tokenString string) (*Claims, error)

	// Lifetime returns the default token lifetime.
	Lifetime() time.Duration
}

// SignClaims are the caller-supplied claims embedded in a token.
type SignClaims struct {
	ID       uuid.UUID
	UserName string
}

// IssuedToken is a signed token and the exp claim it carries.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// SignOption adjusts a single Sign call.
type SignOption func(*signOptions)

type signOptions struct {
	subject   string
	expiresIn time.Duration
}

// WithSubject overrides the subject, which otherwise defaults to SignClaims.ID.
func WithSubject(subject string) SignOption {
	return func(o *signOptions) {
		o.subject = subject
	}
}

// WithExpiresIn overrides the default token lifetime.
func WithExpiresIn(d time.Duration) SignOption {
	return func(o *signOptions) {
		o.expiresIn = d
	}
}

// Claims represents the verified contents of a token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"id,omitempty"`

	// UserName is the user's handle at signing time.
	UserName string `json:"user_name,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	Issuer    string    `json:"iss,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
