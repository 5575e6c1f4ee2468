package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	"github.com/ErlanBelekov/paywall/internal/repository"
)

// TokenHandlerPath is where the identity provider sends magic-link clicks.
const TokenHandlerPath = "/token-handler"

type AuthUsecase struct {
	auth    repository.Authenticator
	siteURL string
}

func NewAuthUsecase(auth repository.Authenticator, siteURL string) *AuthUsecase {
	return &AuthUsecase{
		auth:    auth,
		siteURL: strings.TrimRight(siteURL, "/"),
	}
}

// Login forwards credentials to the password grant and returns the session
// whose access token becomes the cookie value.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	sess, err := u.auth.SignInWithPassword(ctx, normalizeEmail(email), password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("password", "invalid").Inc()
			return nil, err
		}
		metrics.LoginAttemptsTotal.WithLabelValues("password", "error").Inc()
		return nil, fmt.Errorf("sign in with password: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("password", "ok").Inc()
	return sess, nil
}

// RequestMagicLink asks the provider to email a sign-in link. Whether the
// address belongs to an account is never checked here.
func (u *AuthUsecase) RequestMagicLink(ctx context.Context, email string) error {
	if err := u.auth.SendMagicLink(ctx, normalizeEmail(email), u.MagicLinkRedirect()); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("magic_link", "error").Inc()
		return fmt.Errorf("send magic link: %w", err)
	}
	metrics.LoginAttemptsTotal.WithLabelValues("magic_link", "ok").Inc()
	return nil
}

func (u *AuthUsecase) MagicLinkRedirect() string {
	return u.siteURL + TokenHandlerPath
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
