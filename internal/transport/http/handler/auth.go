package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	RequestMagicLink(ctx context.Context, email string) error
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type loginForm struct {
	Email    string `form:"email"    binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

type magicLinkForm struct {
	Email string `form:"email" binding:"required,email"`
}

type sessionForm struct {
	AccessToken string `form:"access_token"`
}

// POST /api/login
// HTMX callers get a fragment plus HX-Redirect; plain form posts get a 302.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		fragment(c, http.StatusBadRequest, msgLoginInvalidForm)
		return
	}

	sess, err := h.authUsecase.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			fragment(c, http.StatusUnauthorized, msgLoginFailed)
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		fragment(c, http.StatusInternalServerError, msgLoginUnavailable)
		return
	}

	middleware.SetSessionCookie(c, sess.AccessToken)

	if isHTMX(c) {
		c.Header("HX-Redirect", "/dashboard")
		fragment(c, http.StatusOK, msgLoginSucceeded)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// POST /api/magic-login
// Always confirms, so the response does not reveal whether the address has an account.
func (h *AuthHandler) RequestMagicLink(c *gin.Context) {
	var form magicLinkForm
	if err := c.ShouldBind(&form); err != nil {
		fragment(c, http.StatusBadRequest, msgMagicInvalidForm)
		return
	}

	if err := h.authUsecase.RequestMagicLink(c.Request.Context(), form.Email); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "request magic link", "error", err)
	}

	fragment(c, http.StatusOK, fmt.Sprintf("Magic link sent to %s. Please check your inbox.", form.Email))
}

// POST /api/session
// Completes the magic-link flow: the token handler page posts the token it
// read from the URL fragment and the server stores it as an HttpOnly cookie.
// Until this call the browser holds the token in page memory only.
func (h *AuthHandler) CompleteSession(c *gin.Context) {
	var form sessionForm
	if err := c.ShouldBind(&form); err != nil || form.AccessToken == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	middleware.SetSessionCookie(c, form.AccessToken)
	c.Redirect(http.StatusFound, "/dashboard")
}

// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
