// Package payment wraps the Stripe SDK: webhook signature verification and
// the customer lookup used when a checkout session carries no email.
package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader is the header Stripe signs deliveries with.
const SignatureHeader = "Stripe-Signature"

type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

type checkoutSession struct {
	ID              string          `json:"id"`
	Customer        json.RawMessage `json:"customer"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerDetails *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

// Verify checks sigHeader against the exact payload bytes and decodes the
// fields the entitlement flow needs. A verification failure wraps
// domain.ErrSignatureInvalid. An authentic checkout session whose object
// cannot be decoded returns the event without an email alongside an error
// wrapping domain.ErrMissingField.
func (v *Verifier) Verify(payload []byte, sigHeader string) (*domain.CheckoutEvent, error) {
	if strings.TrimSpace(sigHeader) == "" {
		return nil, fmt.Errorf("%w: missing %s header", domain.ErrSignatureInvalid, SignatureHeader)
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSignatureInvalid, err)
	}

	out := &domain.CheckoutEvent{ID: event.ID, Type: string(event.Type)}
	if out.Type != domain.EventCheckoutCompleted || event.Data == nil {
		return out, nil
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return out, fmt.Errorf("%w: decode checkout session: %w", domain.ErrMissingField, err)
	}
	if session.CustomerDetails != nil {
		out.Email = session.CustomerDetails.Email
	}
	if out.Email == "" {
		out.Email = session.CustomerEmail
	}
	out.CustomerID = customerID(session.Customer)
	return out, nil
}

// customerID accepts both the plain id and an expanded customer object.
func customerID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var id string
	if json.Unmarshal(raw, &id) == nil {
		return id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.ID
	}
	return ""
}
