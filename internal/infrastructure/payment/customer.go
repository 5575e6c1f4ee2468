package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/metrics"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
)

// CustomerLookup resolves a customer's email through the Stripe API. It is
// built with its own key instead of setting the SDK-wide stripe.Key.
type CustomerLookup struct {
	client *customer.Client
}

func NewCustomerLookup(secretKey string) *CustomerLookup {
	return &CustomerLookup{
		client: &customer.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (l *CustomerLookup) CustomerEmail(ctx context.Context, customerID string) (email string, err error) {
	start := time.Now()
	defer func() {
		res := "ok"
		if err != nil {
			res = "error"
		}
		metrics.ProviderCallDuration.WithLabelValues("stripe_get_customer", res).Observe(time.Since(start).Seconds())
	}()

	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := l.client.Get(customerID, params)
	if err != nil {
		return "", fmt.Errorf("get stripe customer %s: %w", customerID, err)
	}
	if c.Deleted || c.Email == "" {
		return "", fmt.Errorf("stripe customer %s: %w", customerID, domain.ErrMissingField)
	}
	return c.Email, nil
}
