// Package webhook delivers notifications outside the process by POSTing
// them to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gabapcia/walletsync/internal/notify"
	httpx "github.com/gabapcia/walletsync/internal/pkg/transport/http"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrRejected is returned when the endpoint answers with a non-2xx status
// after retries.
var ErrRejected = errors.New("push rejected by endpoint")

type pusher struct {
	endpoint string
	token    string
	client   *retryablehttp.Client
}

var _ notify.Pusher = (*pusher)(nil)

type Option func(*pusher)

// WithBearerToken authenticates every request.
func WithBearerToken(token string) Option {
	return func(p *pusher) {
		p.token = token
	}
}

// WithClient replaces the default retrying client.
func WithClient(c *retryablehttp.Client) Option {
	return func(p *pusher) {
		if c != nil {
			p.client = c
		}
	}
}

func NewPusher(endpoint string, opts ...Option) *pusher {
	p := &pusher{
		endpoint: endpoint,
		client:   httpx.NewClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Push sends n as JSON. The dedup key travels as Idempotency-Key so the
// receiver can drop redeliveries.
func (p *pusher) Push(ctx context.Context, n notify.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", n.Key)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrRejected, res.StatusCode)
	}
	return nil
}
