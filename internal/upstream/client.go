package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

const (
	DefaultTimeout = 30 * time.Second

	StatusUpdatePath = "/api/order-status-update"
	DispatchPath     = "/api/order-dispatch"
	CancelPath       = "/api/order-cancel"
	GoogleAuthPath   = "/api/auth/google"

	maxBodyBytes = 1 << 20
)

// NetworkError is returned when the upstream platform could not be reached or did
// not answer in time.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream %s unreachable: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the upstream platform answered with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.Endpoint, e.StatusCode)
}

// Config holds the upstream connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client posts order lifecycle events to the upstream e-commerce platform.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client sharing one http.Client across calls.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostStatusUpdate notifies the platform that an order was approved or readied.
func (c *Client) PostStatusUpdate(ctx context.Context, update domain.StatusUpdate) ([]byte, error) {
	return c.post(ctx, StatusUpdatePath, update, true)
}

// PostDispatch notifies the platform that an order left the kitchen.
func (c *Client) PostDispatch(ctx context.Context, dispatch domain.Dispatch) ([]byte, error) {
	return c.post(ctx, DispatchPath, dispatch, true)
}

// PostCancel notifies the platform that an order was cancelled.
func (c *Client) PostCancel(ctx context.Context, cancellation domain.Cancellation) ([]byte, error) {
	return c.post(ctx, CancelPath, cancellation, true)
}

// GoogleLogin forwards an OAuth sign-in payload unchanged and returns the platform's
// response body.
func (c *Client) GoogleLogin(ctx context.Context, payload json.RawMessage) ([]byte, error) {
	return c.post(ctx, GoogleAuthPath, payload, false)
}

// post sends body as JSON. The call is detached from ctx cancellation so an
// accepted relay completes even when the caller goes away; the client timeout
// still bounds it.
func (c *Client) post(ctx context.Context, path string, body any, authorize bool) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(
		context.WithoutCancel(ctx),
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if authorize && c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &NetworkError{Endpoint: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}
