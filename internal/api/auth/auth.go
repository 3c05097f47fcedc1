// Package auth authenticates API requests with bearer session tokens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/identity"
)

type contextKey struct{}

// WithClaims returns a copy of ctx carrying the authenticated claims.
func WithClaims(ctx context.Context, claims *identity.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFrom returns the authenticated claims, or nil for anonymous requests.
func ClaimsFrom(ctx context.Context) *identity.Claims {
	claims, _ := ctx.Value(contextKey{}).(*identity.Claims)
	return claims
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	if claims := ClaimsFrom(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}

// Authenticate parses an optional bearer token. Requests without a token pass
// through anonymously; a malformed, forged or expired token is rejected.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, errors.New("authorization header must be a bearer token"))
				return
			}

			claims, err := identity.ParseToken(strings.TrimSpace(token), secret)
			if err != nil {
				response.Unauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			response.Unauthorized(w, errors.New("sign in required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
