package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/paywall/config"
	"github.com/ErlanBelekov/paywall/internal/health"
	"github.com/ErlanBelekov/paywall/internal/infrastructure/supabase"
	ctxlog "github.com/ErlanBelekov/paywall/internal/log"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	httptransport "github.com/ErlanBelekov/paywall/internal/transport/http"
	"github.com/ErlanBelekov/paywall/internal/transport/http/handler"
	"github.com/ErlanBelekov/paywall/internal/transport/http/middleware"
	"github.com/ErlanBelekov/paywall/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ProviderTimeout)

	authUsecase := usecase.NewAuthUsecase(provider, cfg.SiteURL)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMin, cfg.LoginBurst, logger)
	defer limiter.Stop()

	if cfg.SupabaseJWTSecret == "" {
		logger.Warn("SUPABASE_JWT_SECRET not set: dashboard only checks that a session cookie is present")
	}

	metrics.Register()
	checker := health.NewChecker(provider, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewGatewayRouter(httptransport.GatewayDeps{
			Logger:      logger,
			Pages:       handler.NewPageHandler(),
			Auth:        authHandler,
			RateLimiter: limiter,
			JWTSecret:   []byte(cfg.SupabaseJWTSecret),
			HSTS:        cfg.Env != "local",
			SiteURL:     cfg.SiteURL,
			Proxies:     cfg.TrustedProxies,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("gateway started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner)).With("service", "gateway")
}
