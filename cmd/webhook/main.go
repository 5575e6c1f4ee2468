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
	"github.com/ErlanBelekov/paywall/internal/email"
	"github.com/ErlanBelekov/paywall/internal/health"
	"github.com/ErlanBelekov/paywall/internal/infrastructure/payment"
	"github.com/ErlanBelekov/paywall/internal/infrastructure/supabase"
	ctxlog "github.com/ErlanBelekov/paywall/internal/log"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	"github.com/ErlanBelekov/paywall/internal/repository"
	httptransport "github.com/ErlanBelekov/paywall/internal/transport/http"
	"github.com/ErlanBelekov/paywall/internal/transport/http/handler"
	"github.com/ErlanBelekov/paywall/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.LoadWebhook()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	admin := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.ProviderTimeout)

	var customers repository.CustomerDirectory
	if cfg.StripeSecretKey != "" {
		customers = payment.NewCustomerLookup(cfg.StripeSecretKey)
	} else {
		logger.Info("STRIPE_SECRET_KEY not set: checkout events without customer_details.email are ignored")
	}

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	entitlements := usecase.NewEntitlementUsecase(admin, customers, sender, cfg.SiteURL, logger)
	webhookHandler := handler.NewWebhookHandler(payment.NewVerifier(cfg.StripeWebhookSecret), entitlements, logger)

	metrics.Register()
	checker := health.NewChecker(admin, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httptransport.NewWebhookRouter(logger, webhookHandler, cfg.Env != "local"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("webhook receiver started", "port", cfg.Port)
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
	return slog.New(ctxlog.NewContextHandler(inner)).With("service", "webhook")
}
