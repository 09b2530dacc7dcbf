package auth

import (
	"context"
	"time"
)

// MockJWTService is a function-field implementation of JWTService for tests.
type MockJWTService struct {
	SignFunc   func(ctx context.Context, claims SignClaims, opts ...SignOption) (string, error)
	IssueFunc  func(ctx context.Context, claims SignClaims, opts ...SignOption) (*IssuedToken, error)
	VerifyFunc func(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime is returned by Lifetime.
	TokenLifetime time.Duration
}

var _ JWTService = (*MockJWTService)(nil)

// Sign calls SignFunc or returns a fixed token.
func (m *MockJWTService) Sign(ctx context.Context, claims SignClaims, opts ...SignOption) (string, error) {
	if m.SignFunc != nil {
		return m.SignFunc(ctx, claims, opts...)
	}
	return "test-token", nil
}

// Issue calls IssueFunc, or signs through Sign with an expiry of now plus
// Lifetime.
func (m *MockJWTService) Issue(ctx context.Context, claims SignClaims, opts ...SignOption) (*IssuedToken, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, claims, opts...)
	}
	token, err := m.Sign(ctx, claims, opts...)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, ExpiresAt: time.Now().UTC().Add(m.Lifetime())}, nil
}

// Verify calls VerifyFunc or rejects the token.
func (m *MockJWTService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}

func (m *MockJWTService) Lifetime() time.Duration {
	if m.TokenLifetime == 0 {
		return DefaultTokenLifetime
	}
	return m.TokenLifetime
}
