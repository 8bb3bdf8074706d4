package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
	"github.com/ragul2105/plant-disease-api/internal/infrastructure/resilience"
)

// Client verifies bearer tokens against the external identity provider.
// Calls go through the shared resilience executor so provider flaps retry
// and sustained outages trip the breaker instead of piling up requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		executor:   executor,
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Valid bool   `json:"valid"`
}

// Verify exchanges a raw bearer token for its decoded claims. Invalid or
// expired tokens come back as ErrUnauthorized, provider outages as
// ErrTemporary after retries are exhausted.
func (c *Client) Verify(ctx context.Context, token string) (*domain.AuthClaims, error) {
	var out verifyResponse

	err := c.executor.Execute(ctx, "verify_token", func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/tokens/verify", verifyRequest{Token: token}, &out, "verify")
	}, classifyIdentityError)
	if err != nil {
		return nil, wrapIdentityError("verify token", err)
	}

	if !out.Valid || out.UID == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", fmt.Errorf("token rejected by provider"))
	}
	return &domain.AuthClaims{UID: out.UID, Email: out.Email, Name: out.Name}, nil
}

// Ping reports provider reachability. Any HTTP response counts as
// reachable; only a transport failure does not.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
