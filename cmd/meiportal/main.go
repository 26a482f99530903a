package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/config"
	"github.com/portaldomei/mei-portal-go/internal/handler"
	"github.com/portaldomei/mei-portal-go/internal/infra/advisory"
	"github.com/portaldomei/mei-portal-go/internal/infra/cache"
	"github.com/portaldomei/mei-portal-go/internal/infra/observability"
	"github.com/portaldomei/mei-portal-go/internal/infra/resilience"
	"github.com/portaldomei/mei-portal-go/internal/infra/supabase"
	"github.com/portaldomei/mei-portal-go/internal/service"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("policy_file", cfg.PolicyFile),
		zap.Bool("use_supabase", cfg.UseSupabase),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_session_ttl", cfg.JWTSessionTTL),
	)

	// --- Fiscal policy constants ---
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Fatal("failed to load policy constants", zap.Error(err))
	}
	logger.Info("policy constants loaded", zap.Int("year", policy.Year))

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "mei-portal-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	contentCache := cache.New[any](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	supabaseCB := resilience.NewCircuitBreaker("supabase", logger)
	agentCB := resilience.NewCircuitBreaker("advisory-agent", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var supabaseClient *supabase.Client
	if cfg.UseSupabase && cfg.SupabaseURL != "" {
		logger.Info("using Supabase as content backend",
			zap.String("supabase_url", cfg.SupabaseURL),
			zap.String("bucket", cfg.SupabaseBucket),
		)
		supabaseClient = supabase.NewClient(
			httpClient,
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			cfg.SupabaseBucket,
			supabaseCB,
			resilienceCfg,
			logger,
		)
	}

	agentClient := advisory.NewAgentClient(httpClient, cfg.AdvisorURL, agentCB, resilienceCfg)

	// --- Services ---
	svcs := handler.Services{
		Calculators: service.NewCalculatorService(policy, metrics, logger),
		Advisor:     service.NewAdvisorService(agentClient, metrics, logger),
	}

	if supabaseClient != nil {
		svcs.Content = service.NewContentService(supabaseClient, supabaseClient, contentCache, metrics, logger)
		svcs.Auth = service.NewAdminAuthService(supabaseClient, cfg.JWTSecret, cfg.JWTSessionTTL, logger)
		logger.Info("content and admin services enabled with Supabase store")
	} else {
		logger.Warn("content service: Supabase not configured, content and admin routes unavailable")
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger, cfg.AllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
