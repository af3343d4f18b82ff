package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/jaqb8/lingocheck/pkg/ctxutil"
)

// RealIP resolves the client IP and stores it in the request context.
// It trusts X-Forwarded-For (first hop) and X-Real-Ip, falling back to the
// connection's remote address. The resolved IP is the identity for both
// the rate limiter and the anonymous quota, so every consumer must see
// the same value.
func RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxutil.WithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}

	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return strings.TrimSpace(rip)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
