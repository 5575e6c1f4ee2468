package repository

import (
	"context"

	"github.com/ErlanBelekov/paywall/internal/domain"
)

// Authenticator is the identity provider's end-user surface (anon key).
type Authenticator interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SendMagicLink(ctx context.Context, email, redirectTo string) error
}

// UserDirectory is the identity provider's admin surface (service-role key).
type UserDirectory interface {
	ListUsersByEmail(ctx context.Context, email string) ([]domain.User, error)
	UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error
}

// CustomerDirectory resolves payment-provider customers.
type CustomerDirectory interface {
	CustomerEmail(ctx context.Context, customerID string) (string, error)
}
