// Package registryclient calls the user registry over HTTP. Requests go
// through an otelhttp transport, so each call is a client span and carries
// the caller's trace context downstream.
package registryclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"user-registry-service/pkg/logger"
)

// User mirrors the registry's user record.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

type CreateUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserInput omits nil fields from the request body.
type UpdateUserInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// APIError is a non-2xx answer from the registry.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry responded %d: %s", e.StatusCode, e.Detail)
}

// IsAPIError reports whether err carries an upstream status.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// Client is a registry HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a client for the registry at baseURL. opts configure the
// otelhttp transport (tracer provider, propagators).
func New(baseURL string, timeout time.Duration, log *zap.Logger, opts ...otelhttp.Option) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport, opts...),
		},
		log: log.Named("registryclient"),
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithContext(ctx, c.log).Error("registry call failed",
			zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logger.WithContext(ctx, c.log).Debug("registry call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

func (c *Client) ListUsers(ctx context.Context) (*UserList, error) {
	var out UserList
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/users", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, in UpdateUserInput) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, userPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser returns the registry's confirmation message.
func (c *Client) DeleteUser(ctx context.Context, id int64) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, userPath(id), nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
