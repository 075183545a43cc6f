// Package api provides the HTTP client for the spendlens backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spendlens/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrUnauthorized indicates the token is missing, expired, or invalid.
	ErrUnauthorized = errors.New("api: unauthorized (token expired or invalid)")
	// ErrRateLimited indicates the backend rate limit was hit.
	ErrRateLimited = errors.New("api: rate limited")
)

// TokenSource supplies the current bearer token at call time, so a token
// refreshed mid-session is picked up without rebuilding the client.
type TokenSource func() string

// StaticToken returns a TokenSource that always yields tok.
func StaticToken(tok string) TokenSource {
	return func() string { return tok }
}

// Client talks to the spendlens backend API.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewClient creates a client for the given base URL. tokens may be nil for
// endpoints that allow anonymous access (login).
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
	}
}

// FetchAlerts returns the current budget alerts. A response without an
// alerts field yields an empty list, not an error.
func (c *Client) FetchAlerts(ctx context.Context) ([]model.Alert, error) {
	body, err := c.get(ctx, "/api/alerts")
	if err != nil {
		return nil, err
	}

	var out model.AlertsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("api: parsing alerts: %w", err)
	}
	if out.Alerts == nil {
		out.Alerts = []model.Alert{}
	}
	return out.Alerts, nil
}

// SendChat sends one chat message and returns the assistant's reply.
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	body, err := c.post(ctx, "/api/chatbot/chat", model.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}

	var out model.ChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("api: parsing chat reply: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("api: chat: %s", out.Error)
	}
	return out.Reply, nil
}

// FetchSummary returns the current month's income/expense aggregates.
func (c *Client) FetchSummary(ctx context.Context) (*model.Summary, error) {
	body, err := c.get(ctx, "/api/summary")
	if err != nil {
		return nil, err
	}

	var out model.Summary
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("api: parsing summary: %w", err)
	}
	return &out, nil
}

// FetchTransactions returns the most recent transactions, newest first.
func (c *Client) FetchTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	path := "/api/transactions"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var out struct {
		Transactions []model.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("api: parsing transactions: %w", err)
	}
	return out.Transactions, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := c.post(ctx, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("api: parsing login response: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("api: login response missing token")
	}
	return out.Token, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("api: encoding request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface a structured error message when the backend sent one.
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("api: %s (status %d)", e.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}

	return data, nil
}
