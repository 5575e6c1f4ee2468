package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/usecase"
)

// ---- fakes ----

type updateCall struct {
	userID   string
	metadata map[string]any
}

type fakeDirectory struct {
	users     []domain.User
	listErr   error
	updateErr error

	listCalls []string
	updates   []updateCall
}

func (d *fakeDirectory) ListUsersByEmail(_ context.Context, email string) ([]domain.User, error) {
	d.listCalls = append(d.listCalls, email)
	return d.users, d.listErr
}

func (d *fakeDirectory) UpdateUserMetadata(_ context.Context, userID string, metadata map[string]any) error {
	d.updates = append(d.updates, updateCall{userID: userID, metadata: metadata})
	return d.updateErr
}

type fakeCustomers struct {
	email string
	err   error
	calls int
}

func (c *fakeCustomers) CustomerEmail(_ context.Context, _ string) (string, error) {
	c.calls++
	return c.email, c.err
}

type fakeSender struct {
	to  []string
	err error
}

func (s *fakeSender) Send(_ context.Context, to, _, _ string) error {
	s.to = append(s.to, to)
	return s.err
}

// ---- helpers ----

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func checkout(email string) *domain.CheckoutEvent {
	return &domain.CheckoutEvent{ID: "evt_1", Type: domain.EventCheckoutCompleted, Email: email}
}

// ---- HandleEvent ----

func TestHandleEvent_OtherType_NoCalls(t *testing.T) {
	dir := &fakeDirectory{}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), &domain.CheckoutEvent{Type: "invoice.paid", Email: "a@example.com"})
	if res.Outcome != domain.OutcomeIgnored {
		t.Errorf("outcome = %q, want ignored", res.Outcome)
	}
	if len(dir.listCalls) != 0 || len(dir.updates) != 0 {
		t.Errorf("unexpected provider calls: list=%v updates=%v", dir.listCalls, dir.updates)
	}
}

func TestHandleEvent_SingleMatch_SetsFlag(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{{ID: "u1", Email: "A@example.com"}}}
	sender := &fakeSender{}
	uc := usecase.NewEntitlementUsecase(dir, nil, sender, "https://app.example.com", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeActivated || res.UserID != "u1" || res.Err != nil {
		t.Fatalf("result = %+v, want activated u1", res)
	}
	if len(dir.updates) != 1 {
		t.Fatalf("updates = %d, want exactly 1", len(dir.updates))
	}
	got := dir.updates[0]
	if got.userID != "u1" || got.metadata["subscription_active"] != true || len(got.metadata) != 1 {
		t.Errorf("update = %+v", got)
	}
	if len(sender.to) != 1 || sender.to[0] != "a@example.com" {
		t.Errorf("notice recipients = %v", sender.to)
	}
}

func TestHandleEvent_NoMatch_NoUpdate(t *testing.T) {
	dir := &fakeDirectory{}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeNoUser {
		t.Errorf("outcome = %q, want no_user", res.Outcome)
	}
	if len(dir.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(dir.updates))
	}
}

func TestHandleEvent_InexactProviderFilter_Ignored(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{{ID: "u9", Email: "someone-else@example.com"}}}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeNoUser {
		t.Errorf("outcome = %q, want no_user", res.Outcome)
	}
	if len(dir.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(dir.updates))
	}
}

func TestHandleEvent_MultipleMatches_Ambiguous(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{
		{ID: "u1", Email: "a@example.com"},
		{ID: "u2", Email: "a@example.com"},
	}}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeAmbiguous || !errors.Is(res.Err, domain.ErrAmbiguousUser) {
		t.Errorf("result = %+v, want ambiguous", res)
	}
	if len(dir.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(dir.updates))
	}
}

func TestHandleEvent_LookupFails_NoUpdate(t *testing.T) {
	dir := &fakeDirectory{listErr: domain.ErrProvider}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeLookupFailed || !errors.Is(res.Err, domain.ErrProvider) {
		t.Errorf("result = %+v, want lookup_failed", res)
	}
	if len(dir.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(dir.updates))
	}
}

func TestHandleEvent_UpdateFails_Distinguishable(t *testing.T) {
	updateErr := errors.New("500 from provider")
	dir := &fakeDirectory{users: []domain.User{{ID: "u1", Email: "a@example.com"}}, updateErr: updateErr}
	sender := &fakeSender{}
	uc := usecase.NewEntitlementUsecase(dir, nil, sender, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeUpdateFailed || !errors.Is(res.Err, updateErr) {
		t.Errorf("result = %+v, want update_failed", res)
	}
	if len(sender.to) != 0 {
		t.Errorf("notice sent after failed update: %v", sender.to)
	}
}

func TestHandleEvent_MissingEmail_NoCustomerLookup(t *testing.T) {
	dir := &fakeDirectory{}
	uc := usecase.NewEntitlementUsecase(dir, nil, nil, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout(""))
	if res.Outcome != domain.OutcomeMissingEmail || !errors.Is(res.Err, domain.ErrMissingField) {
		t.Errorf("result = %+v, want missing_email", res)
	}
	if len(dir.listCalls) != 0 {
		t.Errorf("list calls = %v, want none", dir.listCalls)
	}
}

func TestHandleEvent_MissingEmail_FallsBackToCustomer(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{{ID: "u1", Email: "a@example.com"}}}
	customers := &fakeCustomers{email: "a@example.com"}
	uc := usecase.NewEntitlementUsecase(dir, customers, nil, "", testLogger())

	ev := checkout("")
	ev.CustomerID = "cus_1"
	res := uc.HandleEvent(context.Background(), ev)
	if res.Outcome != domain.OutcomeActivated {
		t.Fatalf("outcome = %q, want activated", res.Outcome)
	}
	if customers.calls != 1 {
		t.Errorf("customer lookups = %d, want 1", customers.calls)
	}
}

func TestHandleEvent_CustomerLookupFails_MissingEmail(t *testing.T) {
	dir := &fakeDirectory{}
	customers := &fakeCustomers{err: errors.New("stripe down")}
	uc := usecase.NewEntitlementUsecase(dir, customers, nil, "", testLogger())

	ev := checkout("")
	ev.CustomerID = "cus_1"
	res := uc.HandleEvent(context.Background(), ev)
	if res.Outcome != domain.OutcomeMissingEmail {
		t.Errorf("outcome = %q, want missing_email", res.Outcome)
	}
	if len(dir.listCalls) != 0 {
		t.Errorf("list calls = %v, want none", dir.listCalls)
	}
}

func TestHandleEvent_NoticeFailure_StillActivated(t *testing.T) {
	dir := &fakeDirectory{users: []domain.User{{ID: "u1", Email: "a@example.com"}}}
	sender := &fakeSender{err: errors.New("resend down")}
	uc := usecase.NewEntitlementUsecase(dir, nil, sender, "", testLogger())

	res := uc.HandleEvent(context.Background(), checkout("a@example.com"))
	if res.Outcome != domain.OutcomeActivated || res.Err != nil {
		t.Errorf("result = %+v, want activated", res)
	}
}
