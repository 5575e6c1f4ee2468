package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Common holds the settings both binaries read.
type Common struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	SupabaseURL     string        `env:"SUPABASE_URL,required" validate:"required,url"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s" validate:"min=1s"`
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Common) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Gateway struct {
	Common

	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	SupabaseAnonKey   string `env:"SUPABASE_ANON_KEY,required" validate:"required"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`
	SiteURL           string `env:"SITE_URL" envDefault:"http://localhost:8080" validate:"required,url"`

	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed when keying the rate limiter. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:"," validate:"dive,ip|cidr"`

	LoginRatePerMin int `env:"LOGIN_RATE_PER_MIN" envDefault:"30" validate:"min=1,max=6000"`
	LoginBurst      int `env:"LOGIN_BURST" envDefault:"10" validate:"min=1,max=1000"`
}

type Webhook struct {
	Common

	Port string `env:"PORT" envDefault:"8081" validate:"required"`

	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required" validate:"required"`
	StripeSecretKey        string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret    string `env:"STRIPE_WEBHOOK_SECRET,required" validate:"required"`

	SiteURL      string `env:"SITE_URL" validate:"omitempty,url"`
	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func LoadGateway() (*Gateway, error) {
	cfg := &Gateway{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return cfg, nil
}

func LoadWebhook() (*Webhook, error) {
	cfg := &Webhook{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return cfg, nil
}

func load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
