package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// SameOrigin rejects state-changing requests that a browser marks as coming
// from another site, so a third-party page cannot log a visitor in or plant
// its own session. Clients that send neither Sec-Fetch-Site nor Origin
// (curl, server-to-server) pass.
//
// siteURL is the public origin of the gateway; the request's own Host is
// always accepted as well.
func SameOrigin(logger *slog.Logger, siteURL string) gin.HandlerFunc {
	logger = logger.With("component", "same_origin")
	allowed := ""
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		allowed = strings.ToLower(u.Scheme + "://" + u.Host)
	}

	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		if site := c.GetHeader("Sec-Fetch-Site"); site != "" && site != "same-origin" && site != "none" {
			rejectCrossSite(c, logger, "sec_fetch_site", site)
			return
		}

		if origin := c.GetHeader("Origin"); origin != "" && !originAllowed(origin, c.Request.Host, allowed) {
			rejectCrossSite(c, logger, "origin", origin)
			return
		}

		c.Next()
	}
}

func originAllowed(origin, host, allowed string) bool {
	origin = strings.ToLower(strings.TrimRight(origin, "/"))
	if allowed != "" && origin == allowed {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func rejectCrossSite(c *gin.Context, logger *slog.Logger, header, value string) {
	logger.WarnContext(c.Request.Context(), "cross-site request rejected",
		"path", c.FullPath(), header, value)
	c.Data(http.StatusForbidden, "text/html; charset=utf-8",
		[]byte("<p>Request blocked. Please submit the form from this site.</p>"))
	c.Abort()
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
