package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/email"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	"github.com/ErlanBelekov/paywall/internal/repository"
)

// EntitlementUsecase turns a verified checkout event into a metadata write
// on the matching identity-provider user.
//
// The lookup and the write are two separate provider calls with no
// concurrency check; two deliveries racing for the same user can interleave.
type EntitlementUsecase struct {
	users     repository.UserDirectory
	customers repository.CustomerDirectory // nil disables the Stripe email fallback
	notifier  email.Sender                 // nil disables activation notices
	siteURL   string
	logger    *slog.Logger
}

func NewEntitlementUsecase(
	users repository.UserDirectory,
	customers repository.CustomerDirectory,
	notifier email.Sender,
	siteURL string,
	logger *slog.Logger,
) *EntitlementUsecase {
	return &EntitlementUsecase{
		users:     users,
		customers: customers,
		notifier:  notifier,
		siteURL:   siteURL,
		logger:    logger.With("component", "entitlement"),
	}
}

// HandleEvent never returns an error: every failure is folded into the
// Activation outcome so the caller can pick a response shape.
func (u *EntitlementUsecase) HandleEvent(ctx context.Context, ev *domain.CheckoutEvent) domain.Activation {
	res := u.handle(ctx, ev)
	metrics.WebhookEventsTotal.WithLabelValues(string(res.Outcome)).Inc()
	return res
}

func (u *EntitlementUsecase) handle(ctx context.Context, ev *domain.CheckoutEvent) domain.Activation {
	if ev.Type != domain.EventCheckoutCompleted {
		u.logger.InfoContext(ctx, "webhook event ignored", "type", ev.Type)
		return domain.Activation{Outcome: domain.OutcomeIgnored}
	}

	addr := u.resolveEmail(ctx, ev)
	if addr == "" {
		err := fmt.Errorf("customer_details.email: %w", domain.ErrMissingField)
		u.logger.WarnContext(ctx, "checkout event has no customer email", "customer_id", ev.CustomerID)
		return domain.Activation{Outcome: domain.OutcomeMissingEmail, Err: err}
	}

	users, err := u.users.ListUsersByEmail(ctx, addr)
	if err != nil {
		u.logger.ErrorContext(ctx, "list users by email", "email", addr, "error", err)
		return domain.Activation{Outcome: domain.OutcomeLookupFailed, Email: addr, Err: err}
	}

	matches := matchEmail(users, addr)
	switch len(matches) {
	case 0:
		u.logger.WarnContext(ctx, "no user found for email", "email", addr)
		return domain.Activation{Outcome: domain.OutcomeNoUser, Email: addr}
	case 1:
	default:
		err := fmt.Errorf("%w: %d matches", domain.ErrAmbiguousUser, len(matches))
		u.logger.ErrorContext(ctx, "refusing to pick between users sharing an email", "email", addr, "matches", len(matches))
		return domain.Activation{Outcome: domain.OutcomeAmbiguous, Email: addr, Err: err}
	}

	user := matches[0]
	if err := u.users.UpdateUserMetadata(ctx, user.ID, map[string]any{domain.SubscriptionFlag: true}); err != nil {
		u.logger.WarnContext(ctx, "subscription flag update failed", "user_id", user.ID, "error", err)
		return domain.Activation{Outcome: domain.OutcomeUpdateFailed, UserID: user.ID, Email: addr, Err: err}
	}

	u.logger.InfoContext(ctx, "subscription activated", "user_id", user.ID)
	u.notify(ctx, addr)
	return domain.Activation{Outcome: domain.OutcomeActivated, UserID: user.ID, Email: addr}
}

func (u *EntitlementUsecase) resolveEmail(ctx context.Context, ev *domain.CheckoutEvent) string {
	if ev.Email != "" {
		return strings.TrimSpace(ev.Email)
	}
	if ev.CustomerID == "" || u.customers == nil {
		return ""
	}

	addr, err := u.customers.CustomerEmail(ctx, ev.CustomerID)
	if err != nil {
		u.logger.WarnContext(ctx, "customer email lookup failed", "customer_id", ev.CustomerID, "error", err)
		return ""
	}
	return strings.TrimSpace(addr)
}

func (u *EntitlementUsecase) notify(ctx context.Context, addr string) {
	if u.notifier == nil {
		return
	}
	subject, body := email.ActivationNotice(u.siteURL)
	if err := u.notifier.Send(ctx, addr, subject, body); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		u.logger.WarnContext(ctx, "activation notice failed", "error", err)
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}

// matchEmail drops users whose email differs from addr; the provider's
// email filter is not guaranteed to be exact.
func matchEmail(users []domain.User, addr string) []domain.User {
	var out []domain.User
	for _, u := range users {
		if strings.EqualFold(strings.TrimSpace(u.Email), addr) {
			out = append(out, u)
		}
	}
	return out
}
