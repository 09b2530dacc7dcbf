package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cuddly-waffle/account-api/internal/api/shared"
	"github.com/cuddly-waffle/account-api/internal/service/auth"
)

// AuthMiddleware verifies bearer session tokens.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates an AuthMiddleware backed by jwtService.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate rejects requests without a valid "Bearer <token>"
// Authorization header and stores the token's user id in the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Authorization header required",
				auth.ErrMissingToken, shared.WithErrorCode("token_missing"))
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.Verify(r.Context(), token)
		if err != nil {
			var expired *auth.TokenExpiredError
			switch {
			case errors.As(err, &expired):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err,
					shared.WithErrorCode("token_expired"),
					shared.WithErrorInfos(map[string]string{
						"expired_at": expired.ExpiredAt.UTC().Format(time.RFC3339),
					}))
			case errors.Is(err, auth.ErrInvalidToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithErrorCode("token_invalid"), shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUserID(r.Context(), claims.UserID)))
	})
}

