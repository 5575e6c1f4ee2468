package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/infrastructure/payment"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	"github.com/ErlanBelekov/paywall/internal/reqctx"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type eventVerifier interface {
	Verify(payload []byte, sigHeader string) (*domain.CheckoutEvent, error)
}

type entitlementUsecaser interface {
	HandleEvent(ctx context.Context, ev *domain.CheckoutEvent) domain.Activation
}

type WebhookHandler struct {
	verifier     eventVerifier
	entitlements entitlementUsecaser
	logger       *slog.Logger
}

func NewWebhookHandler(verifier eventVerifier, entitlements entitlementUsecaser, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:     verifier,
		entitlements: entitlements,
		logger:       logger.With("component", "webhook_handler"),
	}
}

// POST /stripe-webhook
// Only a bad signature or unreadable body produces a non-2xx; provider
// failures downstream are reported in the status field with 200.
func (h *WebhookHandler) Receive(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "read webhook body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidRequest})
		return
	}

	ev, err := h.verifier.Verify(payload, c.GetHeader(payment.SignatureHeader))
	if err != nil && (ev == nil || !errors.Is(err, domain.ErrMissingField)) {
		metrics.WebhookSignatureFailuresTotal.Inc()
		h.logger.WarnContext(c.Request.Context(), "webhook signature rejected", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidSignature})
		return
	}

	ctx := reqctx.WithEventID(c.Request.Context(), ev.ID)
	c.Request = c.Request.WithContext(ctx)
	h.logger.InfoContext(ctx, "webhook received", "type", ev.Type)
	if err != nil {
		// authentic but malformed; the usecase treats it as missing email
		h.logger.WarnContext(ctx, "webhook payload not decodable", "error", err)
	}

	res := h.entitlements.HandleEvent(ctx, ev)
	c.JSON(http.StatusOK, gin.H{"status": responseStatus(res.Outcome)})
}

// responseStatus keeps every post-verification answer at 200. Lookup,
// ambiguity and update failures report "error" instead of an ignored-shaped
// status so a failed activation is visible to whoever reads the delivery log.
func responseStatus(o domain.Outcome) string {
	switch o {
	case domain.OutcomeActivated:
		return statusActivated
	case domain.OutcomeIgnored, domain.OutcomeNoUser, domain.OutcomeMissingEmail:
		return statusIgnored
	default:
		return statusError
	}
}
