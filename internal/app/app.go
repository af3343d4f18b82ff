package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jaqb8/lingocheck/internal/adapter/postgres"
	pointsrepo "github.com/jaqb8/lingocheck/internal/adapter/postgres/points"
	quotarepo "github.com/jaqb8/lingocheck/internal/adapter/postgres/quota"
	"github.com/jaqb8/lingocheck/internal/analytics"
	"github.com/jaqb8/lingocheck/internal/auth"
	"github.com/jaqb8/lingocheck/internal/config"
	"github.com/jaqb8/lingocheck/internal/llm"
	"github.com/jaqb8/lingocheck/internal/ratelimit"
	"github.com/jaqb8/lingocheck/internal/service/analysis"
	"github.com/jaqb8/lingocheck/internal/service/gamification"
	"github.com/jaqb8/lingocheck/internal/service/quota"
	"github.com/jaqb8/lingocheck/internal/transport/middleware"
	"github.com/jaqb8/lingocheck/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// services and transport, and serves until ctx is cancelled, then shuts
// down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	providerMode := "live"
	if cfg.LLM.Mock {
		providerMode = "mock"
	}

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("llm_mode", providerMode),
	)

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.DSN); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Persistence adapters.
	usageRepo := quotarepo.New(pool)
	pointsRepo := pointsrepo.New(pool)

	// Services.
	var provider analysis.CompletionProvider
	if cfg.LLM.Mock {
		provider = analysis.NewMockProvider()
	} else {
		provider = analysis.NewLiveProvider(llm.NewClient(cfg.LLM, logger), cfg.LLM, logger)
	}
	engine := analysis.NewService(logger, provider)
	quotaSvc := quota.NewService(logger, usageRepo, cfg.Quota)
	rewarder := gamification.NewService(logger, pointsRepo)
	sink := analytics.NewLogSink(logger)

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	validator := auth.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	// Transport.
	analyzeHandler := rest.NewAnalyzeHandler(logger, engine, quotaSvc, limiter, rewarder, sink)
	healthHandler := rest.NewHealthHandler(pool, BuildVersion(), providerMode)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/analyze", analyzeHandler.Analyze)
	mux.HandleFunc("GET /api/analyze/quota", analyzeHandler.QuotaStatus)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(validator),
	)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		// Let in-flight point awards finish before the pool closes.
		rewarder.Drain()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
