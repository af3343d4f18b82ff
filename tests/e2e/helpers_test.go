//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	pointsrepo "github.com/jaqb8/lingocheck/internal/adapter/postgres/points"
	quotarepo "github.com/jaqb8/lingocheck/internal/adapter/postgres/quota"
	"github.com/jaqb8/lingocheck/internal/adapter/postgres/testhelper"
	"github.com/jaqb8/lingocheck/internal/analytics"
	authpkg "github.com/jaqb8/lingocheck/internal/auth"
	"github.com/jaqb8/lingocheck/internal/config"
	"github.com/jaqb8/lingocheck/internal/domain"
	"github.com/jaqb8/lingocheck/internal/ratelimit"
	"github.com/jaqb8/lingocheck/internal/service/analysis"
	"github.com/jaqb8/lingocheck/internal/service/gamification"
	quotasvc "github.com/jaqb8/lingocheck/internal/service/quota"
	"github.com/jaqb8/lingocheck/internal/transport/middleware"
	"github.com/jaqb8/lingocheck/internal/transport/rest"
)

const (
	testJWTSecret = "e2e-secret-at-least-32-chars-long-!!!!"
	testJWTIssuer = "lingocheck-e2e"
)

// testServer wraps the full-stack HTTP server for E2E tests.
type testServer struct {
	URL      string
	Client   *http.Client
	Pool     *pgxpool.Pool
	Rewarder *gamification.Service
	jwt      *authpkg.Validator
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// serverOptions tweak the wiring per test.
type serverOptions struct {
	dailyLimit    int
	rateLimitMax  int
	rateLimitSpan time.Duration
}

func defaultOptions() serverOptions {
	return serverOptions{
		dailyLimit:    5,
		rateLimitMax:  10,
		rateLimitSpan: time.Minute,
	}
}

// setupTestServer wires the full application over a shared test database
// and the deterministic mock provider, and returns a running server.
func setupTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	usageRepo := quotarepo.New(pool)
	pointsRepo := pointsrepo.New(pool)

	engine := analysis.NewService(logger, analysis.NewMockProvider())
	quota := quotasvc.NewService(logger, usageRepo, config.QuotaConfig{
		DailyLimit: opts.dailyLimit,
		IPHashSalt: "e2e-salt",
	})
	rewarder := gamification.NewService(logger, pointsRepo)

	limiter := ratelimit.New(opts.rateLimitMax, opts.rateLimitSpan, 0)
	t.Cleanup(limiter.Stop)

	validator := authpkg.NewValidator(testJWTSecret, testJWTIssuer)

	analyzeHandler := rest.NewAnalyzeHandler(logger, engine, quota, limiter, rewarder, analytics.NopSink{})
	healthHandler := rest.NewHealthHandler(pool, "e2e", "mock")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/analyze", analyzeHandler.Analyze)
	mux.HandleFunc("GET /api/analyze/quota", analyzeHandler.QuotaStatus)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recovery(logger),
		middleware.Auth(validator),
	)(mux)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:      srv.URL,
		Client:   srv.Client(),
		Pool:     pool,
		Rewarder: rewarder,
		jwt:      validator,
	}
}

// tokenFor signs an access token for the given user.
func (ts *testServer) tokenFor(t *testing.T, user domain.User) string {
	t.Helper()
	token, err := ts.jwt.SignAccessToken(user, time.Hour)
	require.NoError(t, err)
	return token
}

// postAnalyze sends an analyze request. ip feeds X-Forwarded-For so each
// test can pick a fresh anonymous identity; token, when non-empty, is sent
// as a Bearer credential.
func (ts *testServer) postAnalyze(t *testing.T, body map[string]any, ip, token string) (*http.Response, map[string]any) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/analyze", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

// getQuota reads the quota status endpoint for the given identity.
func (ts *testServer) getQuota(t *testing.T, ip, token string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/analyze/quota", nil)
	require.NoError(t, err)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// freshIP returns a unique client IP so tests never share quota state.
var ipCounter int

func freshIP() string {
	ipCounter++
	return fmt.Sprintf("10.1.%d.%d", ipCounter/250, ipCounter%250+1)
}
