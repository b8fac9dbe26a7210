// Package api wraps the storefront backend's REST endpoints. Every response
// is decoded through a single envelope type whose payload always lives under
// "data".
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/anishff444/nepwears/pkg/errors"
	"github.com/anishff444/nepwears/pkg/httpclient"
	"github.com/anishff444/nepwears/pkg/logger"
)

const serviceName = "storefront-api"

// maxResponseBytes caps how much of a success body is read.
const maxResponseBytes = 4 << 20

// ErrMalformedResponse is returned when a 2xx body cannot be decoded into the
// expected envelope or lacks its payload.
var ErrMalformedResponse = errors.New("malformed backend response")

// Envelope is the backend's response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Doer sends HTTP requests. *httpclient.CircuitBreakerClient satisfies it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type tokenKey struct{}

// WithToken returns a context whose backend requests carry token as a bearer
// credential.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token attached by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client calls the storefront backend.
type Client struct {
	http    Doer
	baseURL *url.URL
	logger  *slog.Logger
}

// NewClient creates a client for the backend rooted at baseURL, for example
// http://localhost:3000/api/v1.
func NewClient(baseURL string, doer Doer, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url %q must be absolute http(s)", baseURL)
	}
	return &Client{http: doer, baseURL: u, logger: logger}, nil
}

type request struct {
	method string
	path   []string
	query  url.Values
	body   any
}

// call performs req and decodes the envelope's data into T. When want is
// false the body is discarded.
func call[T any](ctx context.Context, c *Client, req request, want bool) (T, error) {
	var zero T

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return zero, err
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		return zero, c.transportError(ctx, req, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if !want {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return zero, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, malformed(fmt.Errorf("%w: read %s %s: %w", ErrMalformedResponse, req.method, httpReq.URL.Path, err))
	}

	env, err := decodeEnvelope[T](body)
	if err != nil {
		return zero, malformed(fmt.Errorf("%s %s: %w", req.method, httpReq.URL.Path, err))
	}
	return env.Data, nil
}

// malformed wraps err as a 502 that still matches ErrMalformedResponse.
func malformed(err error) error {
	appErr := apperrors.BadGateway("Unexpected response from the store. Please try again.")
	appErr.Err = fmt.Errorf("%w: %w", apperrors.ErrBadGateway, err)
	return appErr
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	u := c.baseURL.JoinPath(req.path...)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader = http.NoBody
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", req.method, u.Path, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", req.method, u.Path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		httpReq.Header.Set("X-Correlation-ID", id)
	}
	if req.method != http.MethodGet && req.method != http.MethodHead {
		httpReq.Header.Set("Idempotency-Key", uuid.NewString())
	}
	return httpReq, nil
}

func (c *Client) transportError(ctx context.Context, req request, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		appErr := apperrors.ServiceUnavailable("The store is temporarily unavailable. Please try again shortly.")
		appErr.Err = fmt.Errorf("%w: %w", apperrors.ErrServiceUnavail, err)
		return appErr
	}
	c.logger.WarnContext(ctx, "backend request failed",
		slog.String("method", req.method),
		slog.String("path", "/"+strings.Join(req.path, "/")),
		slog.String("error", err.Error()),
	)
	appErr := apperrors.ServiceUnavailable("Unable to reach the store. Please check your connection.")
	appErr.Err = fmt.Errorf("%w: %s %s: %w", apperrors.ErrServiceUnavail, req.method, strings.Join(req.path, "/"), err)
	return appErr
}

// decodeEnvelope unwraps body. A body that is not JSON, reports
// success=false, or carries no data is malformed.
func decodeEnvelope[T any](body []byte) (*Envelope[T], error) {
	var raw struct {
		Success *bool           `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Success != nil && !*raw.Success {
		return nil, fmt.Errorf("%w: success=false: %s", ErrMalformedResponse, raw.Message)
	}
	data := bytes.TrimSpace(raw.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	env := &Envelope[T]{Success: true, Message: raw.Message}
	if err := json.Unmarshal(data, &env.Data); err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrMalformedResponse, err)
	}
	return env, nil
}
