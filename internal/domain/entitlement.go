package domain

import "errors"

var (
	ErrSignatureInvalid = errors.New("webhook signature is invalid")
	ErrMissingField     = errors.New("event is missing an expected field")
	ErrUserNotFound     = errors.New("no user matches email")
	ErrAmbiguousUser    = errors.New("more than one user matches email")
)

// EventCheckoutCompleted is the only payment event that changes entitlements.
const EventCheckoutCompleted = "checkout.session.completed"

// SubscriptionFlag is the user_metadata key flipped on checkout.
const SubscriptionFlag = "subscription_active"

// CheckoutEvent is the verified subset of a payment provider event.
type CheckoutEvent struct {
	ID         string
	Type       string
	Email      string
	CustomerID string
}

type Outcome string

const (
	OutcomeActivated    Outcome = "activated"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeNoUser       Outcome = "no_user"
	OutcomeMissingEmail Outcome = "missing_email"
	OutcomeAmbiguous    Outcome = "ambiguous_user"
	OutcomeLookupFailed Outcome = "lookup_failed"
	OutcomeUpdateFailed Outcome = "update_failed"
)

// Activation reports what the entitlement flow did for one event.
// Err is set for every outcome other than Activated, Ignored and NoUser.
type Activation struct {
	Outcome Outcome
	UserID  string
	Email   string
	Err     error
}
