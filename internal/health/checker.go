package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const identityProvider = "identity_provider"

// Pinger is satisfied by *supabase.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker reports whether the identity provider is reachable. Neither
// binary owns a database, so the provider is the only dependency probed.
type Checker struct {
	provider Pinger
	logger   *slog.Logger
	gauge    *prometheus.GaugeVec
	timeout  time.Duration
}

// NewChecker creates a health checker and registers its Prometheus gauge.
func NewChecker(provider Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "paywall",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		provider: provider,
		logger:   logger.With("component", "health"),
		gauge:    gauge,
		timeout:  2 * time.Second,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings the identity provider and reports per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	if err := c.provider.Ping(checkCtx); err != nil {
		c.logger.Warn("identity provider health check failed", "error", err)
		result.Status = "down"
		result.Checks[identityProvider] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues(identityProvider).Set(0)
	} else {
		result.Checks[identityProvider] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(identityProvider).Set(1)
	}

	return result
}
