package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/paywall/internal/transport/http/handler"
	"github.com/ErlanBelekov/paywall/internal/transport/http/middleware"
	"github.com/ErlanBelekov/paywall/internal/web"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// GatewayDeps groups what the auth gateway router needs.
type GatewayDeps struct {
	Logger      *slog.Logger
	Pages       *handler.PageHandler
	Auth        *handler.AuthHandler
	RateLimiter *middleware.RateLimiter
	JWTSecret   []byte // empty: presence-only session check
	HSTS        bool
	SiteURL     string   // accepted Origin besides the request's own host
	Proxies     []string // trusted proxies; nil trusts none
}

func NewGatewayRouter(d GatewayDeps) *gin.Engine {
	r := newEngine(d.Logger, d.HSTS, d.Proxies)
	r.SetHTMLTemplate(web.Templates())

	r.GET("/", d.Pages.Login)
	r.GET("/login", d.Pages.Login)
	r.GET("/magic", d.Pages.Magic)
	r.GET("/token-handler", d.Pages.TokenHandler)
	r.GET("/dashboard", middleware.Session(d.JWTSecret, "/"), d.Pages.Dashboard)
	r.GET("/logout", d.Auth.Logout)

	api := r.Group("/api")
	api.Use(middleware.SameOrigin(d.Logger, d.SiteURL))
	if d.RateLimiter != nil {
		api.Use(d.RateLimiter.Middleware())
	}
	api.POST("/login", d.Auth.Login)
	api.POST("/magic-login", d.Auth.RequestMagicLink)
	api.POST("/session", d.Auth.CompleteSession)

	return r
}

func NewWebhookRouter(logger *slog.Logger, webhookHandler *handler.WebhookHandler, hsts bool) *gin.Engine {
	r := newEngine(logger, hsts, nil)
	r.POST("/stripe-webhook", webhookHandler.Receive)
	return r
}

func newEngine(logger *slog.Logger, hsts bool, proxies []string) *gin.Engine {
	r := gin.New()
	// gin trusts every proxy by default, which lets any client pick its
	// own ClientIP through X-Forwarded-For.
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.Error("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(hsts))
	r.Use(sloggin.NewWithConfig(logger, sloggin.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		// RequestID middleware already owns X-Request-ID
		WithRequestID: false,
	}))
	r.Use(middleware.Metrics())
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "not found")
	})
	return r
}
