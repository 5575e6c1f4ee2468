package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/paywall/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

func newOriginEngine(siteURL string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.SameOrigin(slog.Default(), siteURL))
	r.POST("/api/session", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/session", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSameOrigin(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		headers map[string]string
		want    int
	}{
		{"no browser headers", http.MethodPost, nil, http.StatusOK},
		{"same-origin fetch", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-origin"}, http.StatusOK},
		{"typed navigation", http.MethodPost, map[string]string{"Sec-Fetch-Site": "none"}, http.StatusOK},
		{"cross-site fetch", http.MethodPost, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"sibling subdomain", http.MethodPost, map[string]string{"Sec-Fetch-Site": "same-site"}, http.StatusForbidden},
		{"origin matches host", http.MethodPost, map[string]string{"Origin": "http://gateway.internal"}, http.StatusOK},
		{"origin matches site url", http.MethodPost, map[string]string{"Origin": "https://App.Example.com"}, http.StatusOK},
		{"foreign origin", http.MethodPost, map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"opaque origin", http.MethodPost, map[string]string{"Origin": "null"}, http.StatusForbidden},
		{"cross-site GET allowed", http.MethodGet, map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusOK},
	}

	r := newOriginEngine("https://app.example.com")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "http://gateway.internal/api/session", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
