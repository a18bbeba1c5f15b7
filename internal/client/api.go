package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"meedi8/backend/internal/config"
)

// Client is the thin HTTP wrapper every higher-level component goes
// through. It is the single point that attaches the bearer token, enforces
// the request timeout and classifies error responses.
type Client struct {
	BaseURL string
	Session *Session
	// Timeout bounds every request. Defaults to config.RequestTimeout.
	Timeout time.Duration
	// HTTP is the underlying transport, swappable in tests.
	HTTP *http.Client
}

// New creates an API client against baseURL using the given session store.
func New(baseURL string, sess *Session) *Client {
	return &Client{
		BaseURL: baseURL,
		Session: sess,
		Timeout: config.RequestTimeout,
		HTTP:    &http.Client{},
	}
}

// errorBody is the generic error response shape.
type errorBody struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// do performs one JSON request/response cycle. body and out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrRequestTimeout
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return c.classify(resp)
}

// classify turns a non-2xx response into one of the client's error types.
// Higher layers must not re-interpret HTTP statuses.
func (c *Client) classify(resp *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(resp.Body).Decode(&eb) // body may be empty

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		// Hard session-expiry signal: drop the credential so no further
		// call goes out with it.
		_ = c.Session.Teardown()
		return ErrSessionExpired

	case http.StatusPaymentRequired, http.StatusRequestEntityTooLarge:
		pw := &PaywallError{Status: resp.StatusCode}
		if len(eb.Detail) > 0 {
			_ = json.Unmarshal(eb.Detail, &pw.Detail)
		}
		return pw

	default:
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return config.RequestTimeout
}
