package auth

import (
	"context"
	"net/http"

	"github.com/sakif/memeforge/internal/model"
)

// CookieName is the HttpOnly cookie carrying the session JWT.
const CookieName = "token"

// contextKey is unexported so only this package can read or write identity
// values in a request context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces a valid session on protected routes. The identity
// lands in the request context; missing or invalid tokens stop the chain
// with a 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := extractIdentity(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the identity when a valid token is present but
// never blocks the request. Anonymous requests pass through untouched.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := extractIdentity(r, tokens); err == nil {
				ctx := context.WithValue(r.Context(), identityKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity, or false for an
// anonymous request.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok && identity.ID != ""
}

func extractIdentity(r *http.Request, tokens *TokenService) (model.Identity, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return model.Identity{}, err
	}
	return tokens.Validate(cookie.Value)
}
