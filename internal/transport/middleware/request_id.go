package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jaqb8/lingocheck/pkg/ctxutil"
)

// RequestID tags each request with an identifier, honoring one supplied
// by an upstream proxy. The ID rides the context for log correlation
// and is echoed back to the client.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
