package middleware

import (
	"net/http"
	"strings"

	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/pkg/ctxutil"
)

// tokenValidator verifies an access token and returns the caller identity.
type tokenValidator interface {
	ValidateAccessToken(token string) (domain.User, error)
}

// Auth returns middleware that authenticates Bearer tokens. A request
// without a token proceeds as anonymous; a request with an invalid token
// is rejected so a client never silently loses its identity (and with it,
// its unlimited quota).
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}
			user, err := validator.ValidateAccessToken(token)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error_code":"authentication_error"}`)) //nolint:errcheck
				return
			}
			ctx := ctxutil.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
