// Package api is the client for the remote transaction service. It owns
// no state beyond the base URL and a token source; persistence, token
// issuance and validation all live on the server side.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/monthkey"
)

// ErrNoToken is returned before any request is made when an authenticated
// call has no stored bearer token to send.
var ErrNoToken = errors.New("no authentication token found")

// APIError is a non-2xx response. Message carries the response body when
// the server sent one, verbatim for the auth endpoints.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is an APIError with a 401 status.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// TokenSource supplies the current bearer token. ok is false when no
// session is stored.
type TokenSource func() (token string, ok bool)

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// AuthResponse is the shape both auth endpoints return.
type AuthResponse struct {
	Token     string `json:"token"`
	Email     string `json:"email"`
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// User converts the response's identity fields to the domain type.
func (r AuthResponse) User() core.User {
	return core.User{
		Email:     r.Email,
		UserID:    r.UserID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

// ServerSummary is the server-computed month summary. The client
// recomputes summaries locally from the transaction list; this endpoint
// is exposed for parity with the service API.
type ServerSummary struct {
	Income   core.Amount `json:"income"`
	Expenses core.Amount `json:"expenses"`
	Balance  core.Amount `json:"balance"`
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Register creates an account and returns the issued token and identity.
func (c *Client) Register(ctx context.Context, reg core.Registration) (AuthResponse, error) {
	body := map[string]string{
		"email":     reg.Email,
		"password":  reg.Password,
		"firstName": reg.FirstName,
		"lastName":  reg.LastName,
	}
	var out AuthResponse
	if err := c.post(ctx, "/auth/register", body, false, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.post(ctx, "/auth/login", body, false, &out); err != nil {
		return AuthResponse{}, err
	}
	return out, nil
}

// Transactions fetches the ordered list for one month bucket.
func (c *Client) Transactions(ctx context.Context, month monthkey.Key) ([]core.Transaction, error) {
	path := "/transactions?monthYear=" + url.QueryEscape(string(month))
	var out []core.Transaction
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTransaction submits a new transaction; the server assigns the
// durable id and returns the stored record.
func (c *Client) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.post(ctx, "/transactions", tx, true, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

// DeleteTransaction removes a transaction by id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, true)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// MonthlySummary fetches the server-computed summary for one month.
func (c *Client) MonthlySummary(ctx context.Context, month monthkey.Key) (ServerSummary, error) {
	path := "/transactions/summary?monthYear=" + url.QueryEscape(string(month))
	var out ServerSummary
	if err := c.get(ctx, path, &out); err != nil {
		return ServerSummary{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, authed bool, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw), authed)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, authed bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if authed {
		token, ok := c.tokens()
		if !ok {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
