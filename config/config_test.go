package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ErlanBelekov/paywall/config"
)

func setGatewayEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "local")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-key")
}

func setWebhookEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "local")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
}

func TestLoadGateway_Defaults(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("SITE_URL", "https://app.example.com/")

	cfg, err := config.LoadGateway()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.SiteURL != "https://app.example.com" {
		t.Errorf("site url = %q, want trailing slash trimmed", cfg.SiteURL)
	}
	if cfg.ProviderTimeout != 10*time.Second {
		t.Errorf("provider timeout = %v, want 10s", cfg.ProviderTimeout)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v, want info", cfg.SlogLevel())
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("trusted proxies = %v, want none", cfg.TrustedProxies)
	}
}

func TestLoadGateway_MissingAnonKey(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "")

	if _, err := config.LoadGateway(); err == nil {
		t.Fatal("expected error for missing SUPABASE_ANON_KEY")
	}
}

func TestLoadGateway_InvalidEnv(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("ENV", "dev")

	if _, err := config.LoadGateway(); err == nil {
		t.Fatal("expected error for ENV=dev")
	}
}

func TestLoadGateway_TrustedProxies(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,172.16.0.0/12")

	cfg, err := config.LoadGateway()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "172.16.0.0/12" {
		t.Errorf("trusted proxies = %v", cfg.TrustedProxies)
	}
}

func TestLoadGateway_InvalidTrustedProxy(t *testing.T) {
	setGatewayEnv(t)
	t.Setenv("TRUSTED_PROXIES", "proxy.internal")

	if _, err := config.LoadGateway(); err == nil {
		t.Fatal("expected error for non-IP trusted proxy")
	}
}

func TestLoadWebhook_Local(t *testing.T) {
	setWebhookEnv(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadWebhook()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8081" {
		t.Errorf("port = %q, want 8081", cfg.Port)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadWebhook_ProductionRequiresResend(t *testing.T) {
	setWebhookEnv(t)
	t.Setenv("ENV", "production")

	if _, err := config.LoadWebhook(); err == nil {
		t.Fatal("expected error when RESEND_API_KEY is missing in production")
	}

	t.Setenv("RESEND_API_KEY", "re_test")
	t.Setenv("RESEND_FROM", "billing@example.com")
	if _, err := config.LoadWebhook(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadWebhook_MissingSigningSecret(t *testing.T) {
	setWebhookEnv(t)
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	if _, err := config.LoadWebhook(); err == nil {
		t.Fatal("expected error for missing STRIPE_WEBHOOK_SECRET")
	}
}
