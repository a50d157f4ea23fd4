package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-api-accounts/internal/domain"
)

type contextKey string

const UserKey contextKey = "user"

type authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

// BasicAuth returns middleware that checks HTTP Basic credentials (email and
// password) and injects the authenticated user into the request context.
func BasicAuth(auth authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, password, ok := r.BasicAuth()
			if !ok || email == "" {
				unauthorized(w)
				return
			}
			u, err := auth.Authenticate(r.Context(), email, password)
			if errors.Is(err, domain.ErrUnauthorized) {
				unauthorized(w)
				return
			}
			if err != nil {
				slog.Error("basic auth lookup failed", "err", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error", codeInternal)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified rejects users that have not confirmed their email address.
// Must run after BasicAuth.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok {
			unauthorized(w)
			return
		}
		if !u.Verified {
			writeJSONError(w, http.StatusForbidden, "Account not verified. Please verify your email address.", codeUnverified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="accounts", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "Invalid email or password.", codeUnauthorized)
}
