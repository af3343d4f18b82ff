package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaqb8/lingocheck/pkg/ctxutil"
)

func resolveIP(t *testing.T, setup func(r *http.Request)) string {
	t.Helper()
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxutil.ClientIPFromCtx(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:4321"
	setup(req)
	RealIP(next).ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestRealIP_XForwardedForFirstHop(t *testing.T) {
	got := resolveIP(t, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1, 10.0.0.2")
	})
	if got != "203.0.113.7" {
		t.Errorf("expected first XFF hop, got %q", got)
	}
}

func TestRealIP_XRealIP(t *testing.T) {
	got := resolveIP(t, func(r *http.Request) {
		r.Header.Set("X-Real-Ip", "198.51.100.3")
	})
	if got != "198.51.100.3" {
		t.Errorf("expected X-Real-Ip value, got %q", got)
	}
}

func TestRealIP_FallsBackToRemoteAddr(t *testing.T) {
	got := resolveIP(t, func(r *http.Request) {})
	if got != "192.0.2.9" {
		t.Errorf("expected RemoteAddr host, got %q", got)
	}
}
