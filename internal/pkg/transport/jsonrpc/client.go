// Package jsonrpc provides a JSON-RPC 2.0 client over HTTP. Requests go
// through the retrying client from the transport/http package unless another
// *http.Client is supplied.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	httpx "github.com/gabapcia/walletsync/internal/pkg/transport/http"

	"github.com/google/uuid"
)

var (
	// ErrProviderReturnedError indicates that the remote JSON-RPC server returned an error response.
	ErrProviderReturnedError = errors.New("provider error")

	// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// response represents a standard JSON-RPC 2.0 response.
type response struct {
	JsonRPC string `json:"jsonrpc"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Result json.RawMessage `json:"result"`
}

// Err returns an error if the response includes a JSON-RPC error object.
// It wraps ErrProviderReturnedError with the provided error code and message.
func (r response) Err() error {
	if r.Error == nil {
		return nil
	}

	return fmt.Errorf("%w: [%d] - %s", ErrProviderReturnedError, r.Error.Code, r.Error.Message)
}

// Client sends JSON-RPC calls and returns the raw result payload.
type Client interface {
	Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// config holds internal settings for the client.
type config struct {
	httpClient *http.Client
	headers    http.Header
}

// Option configures a Client built by NewClient.
type Option func(*config)

// WithHTTPClient replaces the default retrying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *config) {
		cfg.httpClient = c
	}
}

// WithHeader adds a header sent with every request, such as an API key
// required by hosted node providers.
func WithHeader(key, value string) Option {
	return func(cfg *config) {
		cfg.headers.Add(key, value)
	}
}

type client struct {
	providerEndpoint string
	httpClient       *http.Client
	headers          http.Header
}

var _ Client = (*client)(nil)

// Fetch sends method with params and returns the raw result. The request id
// is a random UUID.
func (c *client) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.NewString(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.providerEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	var data response
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}

	return data.Result, data.Err()
}

// NewClient returns a Client posting to providerEndpoint.
func NewClient(providerEndpoint string, opts ...Option) *client {
	cfg := config{headers: make(http.Header)}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.httpClient == nil {
		cfg.httpClient = httpx.NewClient().StandardClient()
	}

	return &client{
		providerEndpoint: providerEndpoint,
		httpClient:       cfg.httpClient,
		headers:          cfg.headers,
	}
}
