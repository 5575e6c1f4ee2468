// Package supabase talks to the Supabase Auth (GoTrue) REST API.
//
// One Client is bound to one API key: the gateway builds it with the anon
// key for sign-in calls, the webhook with the service-role key for the
// /admin endpoints.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/paywall/internal/domain"
	"github.com/ErlanBelekov/paywall/internal/metrics"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from GoTrue.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, e.Message)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u userResponse) toDomain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

// SignInWithPassword runs the password grant. Rejected credentials come back
// as domain.ErrInvalidCredentials; everything else wraps domain.ErrProvider.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	err := c.do(ctx, "sign_in_password", http.MethodPost, "/auth/v1/token?grant_type=password", body, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, apiErr.Message)
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response without access_token", domain.ErrProvider)
	}

	return &domain.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         resp.User.toDomain(),
	}, nil
}

// SendMagicLink asks GoTrue to email a one-time sign-in link that lands on redirectTo.
func (c *Client) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	path := "/auth/v1/otp"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	body := map[string]any{"email": email, "create_user": true}
	return c.do(ctx, "send_magic_link", http.MethodPost, path, body, nil)
}

type listUsersResponse struct {
	Users []userResponse `json:"users"`
}

// listUsersPerPage matches GoTrue's default page size. maxListPages bounds
// the walk on very large projects.
const (
	listUsersPerPage = 50
	maxListPages     = 200
)

// ListUsersByEmail walks the admin listing with GoTrue's substring filter
// until a short page comes back. The result is returned as the provider
// sent it; callers must not assume the filter was exact.
func (c *Client) ListUsersByEmail(ctx context.Context, email string) ([]domain.User, error) {
	var users []domain.User
	for page := 1; page <= maxListPages; page++ {
		q := url.Values{}
		q.Set("filter", email)
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(listUsersPerPage))

		var resp listUsersResponse
		if err := c.do(ctx, "list_users", http.MethodGet, "/auth/v1/admin/users?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		for _, u := range resp.Users {
			users = append(users, u.toDomain())
		}
		if len(resp.Users) < listUsersPerPage {
			return users, nil
		}
	}
	return nil, fmt.Errorf("%w: user listing exceeded %d pages", domain.ErrProvider, maxListPages)
}

// UpdateUserMetadata merges metadata into the user's user_metadata.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	body := map[string]any{"user_metadata": metadata}
	return c.do(ctx, "update_user", http.MethodPut, "/auth/v1/admin/users/"+url.PathEscape(userID), body, nil)
}

// Ping hits the GoTrue health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/auth/v1/health", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, result any) (err error) {
	start := time.Now()
	defer func() {
		res := "ok"
		if err != nil {
			res = "error"
		}
		metrics.ProviderCallDuration.WithLabelValues(op, res).Observe(time.Since(start).Seconds())
	}()

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", op, err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrProvider, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s: %w", domain.ErrProvider, op, parseAPIError(resp.StatusCode, raw))
	}

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrProvider, op, err)
	}
	return nil
}

// parseAPIError understands the error shapes GoTrue has used over time:
// {"error","error_description"}, {"error_code","msg"} and {"message"}.
func parseAPIError(status int, raw []byte) *APIError {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	apiErr := &APIError{Status: status}
	if json.Unmarshal(raw, &body) != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	apiErr.Code = firstNonEmpty(body.ErrorCode, body.Error)
	apiErr.Message = firstNonEmpty(body.Msg, body.ErrorDescription, body.Message)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
