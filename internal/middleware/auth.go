package middleware

import (
	"context"
	"net/http"
	"strings"
)

const (
	accountKey contextKey = "account_email"
)

// TokenResolver maps a bearer session token to the account identifier holding
// it. Tokens are opaque, server-invalidated strings, so logout can actually
// revoke them.
type TokenResolver func(token string) (string, error)

// BearerToken extracts the bearer token from an Authorization header. Empty
// when absent or malformed.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth resolves the bearer token, when present, to an account and stores the
// account identifier in the request context. An invalid token is rejected; a
// missing one is passed through so endpoints can also serve credential-less
// requests carrying provider keys directly in headers.
func Auth(resolve TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			email, err := resolve(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"invalid token"}}`))
				return
			}
			ctx := context.WithValue(r.Context(), accountKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountFromContext returns the authenticated account identifier, or "".
func AccountFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(accountKey).(string); ok {
		return v
	}
	return ""
}
