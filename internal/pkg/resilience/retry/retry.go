// Package retry runs fallible operations with exponential backoff. It wraps
// avast/retry-go behind a small interface so callers can be tested with a
// generated mock.
//
//	r := retry.New(
//	    retry.WithAttempts(5),
//	    retry.WithDelay(200*time.Millisecond),
//	    retry.WithRetryIf(func(err error) bool { return !errors.Is(err, ErrInvalid) }),
//	)
//	err := r.Execute(ctx, func() error { return fetch(ctx) })
package retry

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry executes an operation until it succeeds, the attempts run out, the
// error is deemed permanent or ctx is done.
type Retry interface {
	// Execute runs operation, retrying it according to the configured policy.
	// The operation must be safe to call more than once.
	Execute(ctx context.Context, operation func() error) error
}

// config holds internal settings for the retry mechanism.
type config struct {
	attempts    uint          // maximum number of attempts, initial one included
	delay       time.Duration // base delay before the first retry
	maxDelay    time.Duration // cap for the exponential delay
	lastErrOnly bool          // return only the last error instead of all of them
	retryIf     func(error) bool
	onRetry     func(attempt uint, err error)
}

// Option configures a Retry built by New.
type Option func(*config)

// retrier implements Retry on top of retry-go.
type retrier struct {
	cfg config
}

var _ Retry = (*retrier)(nil)

// New returns a Retry configured with opts.
//
// Defaults: 3 attempts, 1s base delay, 5s max delay, last error only, every
// error is retryable.
func New(opts ...Option) Retry {
	cfg := config{
		attempts:    3,
		delay:       1 * time.Second,
		maxDelay:    5 * time.Second,
		lastErrOnly: true,
		retryIf:     func(error) bool { return true },
		onRetry:     func(uint, error) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

// Execute implements Retry. The first attempt runs immediately; later ones
// wait an exponentially growing delay capped at maxDelay.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(r.cfg.lastErrOnly),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) && r.cfg.retryIf(err)
		}),
		retry.OnRetry(r.cfg.onRetry),
	}

	return retry.Do(operation, options...)
}

// Backoff returns how long Execute waits before attempt n (one-based count of
// failures so far) when configured with delay and maxDelay: delay * 2^n,
// capped at maxDelay when it is positive.
func Backoff(delay, maxDelay time.Duration, n uint) time.Duration {
	cfg := &retry.Config{}
	retry.Delay(delay)(cfg)

	d := retry.BackOffDelay(n, nil, cfg)
	if maxDelay > 0 && d > maxDelay {
		return maxDelay
	}
	return d
}

// Unrecoverable marks err so Execute returns it without further attempts,
// regardless of the configured predicate.
func Unrecoverable(err error) error {
	return retry.Unrecoverable(err)
}

// IsUnrecoverable reports whether err was wrapped by Unrecoverable.
func IsUnrecoverable(err error) bool {
	return !retry.IsRecoverable(err)
}

// WithAttempts sets the maximum number of attempts, the initial one included.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the base delay used before the first retry.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithLastErrorOnly controls whether Execute returns only the final error or
// every attempt's error joined together.
func WithLastErrorOnly(b bool) Option {
	return func(c *config) {
		c.lastErrOnly = b
	}
}

// WithRetryIf sets the predicate deciding whether an error is worth another
// attempt. A nil predicate is ignored.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.retryIf = fn
		}
	}
}

// WithOnRetry registers a hook called after each failed attempt with the
// zero-based attempt number, the last attempt included. It runs before the
// wait that precedes the next attempt.
func WithOnRetry(fn func(attempt uint, err error)) Option {
	return func(c *config) {
		if fn != nil {
			c.onRetry = fn
		}
	}
}

// Permanent returns a predicate that stops retrying on any of the given errors.
func Permanent(targets ...error) func(error) bool {
	return func(err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return false
			}
		}
		return true
	}
}
