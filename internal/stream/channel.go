// Package stream keeps one realtime subscription alive per (wallet, topic).
//
// A Channel moves through connecting, subscribed, error, reconnecting and
// failed. Failures are retried after an exponentially growing, capped delay;
// once the attempt budget is spent the channel fails terminally and the
// consumer is expected to fall back to polling. Events that happen while
// disconnected are never replayed, so every successful re-subscription is
// reported through OnReconnect as a signal to resync.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultBaseDelay        = time.Second
	DefaultMaxDelay         = 30 * time.Second
	DefaultMaxAttempts      = 5
	DefaultSubscribeTimeout = 10 * time.Second
)

// errSubscribed ends a retry cycle once a subscription is confirmed.
var errSubscribed = errors.New("subscribed")

// State is the lifecycle state of a Channel.
type State string

const (
	StateConnecting   State = "connecting"
	StateSubscribed   State = "subscribed"
	StateError        State = "error"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

// Status is a point-in-time view of a Channel.
type Status struct {
	State    State
	Attempts int
	Delay    time.Duration
}

// Handlers receive the channel's output. Every field is optional. Handlers
// run on the channel's goroutine; a panic inside one is recovered and logged.
type Handlers struct {
	OnInsert      func(ctx context.Context, record json.RawMessage)
	OnUpdate      func(ctx context.Context, record json.RawMessage)
	OnReconnect   func(ctx context.Context)
	OnError       func(ctx context.Context, err error, terminal bool)
	OnStateChange func(status Status)
}

type config struct {
	baseDelay        time.Duration
	maxDelay         time.Duration
	maxAttempts      int
	subscribeTimeout time.Duration
}

// Option configures a Channel built by NewChannel.
type Option func(*config)

// WithBaseDelay sets the backoff base. After n consecutive failures the
// channel waits base * 2^n before subscribing again.
func WithBaseDelay(d time.Duration) Option {
	return func(c *config) {
		c.baseDelay = d
	}
}

// WithMaxDelay caps the backoff delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *config) {
		c.maxDelay = d
	}
}

// WithMaxAttempts sets how many consecutive failures are retried before the
// channel fails terminally.
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		c.maxAttempts = n
	}
}

// WithSubscribeTimeout bounds how long a single subscribe attempt may take to
// be confirmed by the source.
func WithSubscribeTimeout(d time.Duration) Option {
	return func(c *config) {
		c.subscribeTimeout = d
	}
}

type closeFunc func()

// Channel is a reconnecting subscription to one topic of one wallet.
type Channel struct {
	source   Source
	topic    Topic
	wallet   string
	handlers Handlers
	cfg      config

	mu        sync.Mutex
	status    Status
	isStarted bool
	closeFunc closeFunc
	done      chan struct{}

	transitions metric.Int64Counter
}

// NewChannel builds a Channel. It does nothing until Start.
func NewChannel(source Source, topic Topic, wallet string, handlers Handlers, opts ...Option) *Channel {
	cfg := config{
		baseDelay:        DefaultBaseDelay,
		maxDelay:         DefaultMaxDelay,
		maxAttempts:      DefaultMaxAttempts,
		subscribeTimeout: DefaultSubscribeTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	transitions, _ := otel.Meter("github.com/gabapcia/walletsync/internal/stream").Int64Counter(
		"walletsync.stream.transitions",
		metric.WithDescription("Realtime channel state transitions"),
	)

	return &Channel{
		source:      source,
		topic:       topic,
		wallet:      wallet,
		handlers:    handlers,
		cfg:         cfg,
		status:      Status{State: StateConnecting},
		done:        make(chan struct{}),
		transitions: transitions,
	}
}

// Start launches the subscription loop in the background.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isStarted {
		return ErrAlreadyStarted
	}

	ctx = logger.Derive(ctx, "wallet.address", c.wallet, "stream.topic", c.topic)
	ctx, cancel := context.WithCancel(ctx)
	c.closeFunc = closeFunc(cancel)
	c.isStarted = true

	go c.run(ctx)
	return nil
}

// Close stops the loop and unsubscribes. It does not wait for the loop to
// exit; see Done.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closeFunc != nil {
		c.closeFunc()
	}
	c.closeFunc = nil
}

// Done is closed once the loop started by Start has exited.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Status returns the current state, attempt count and backoff delay.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.status
}

func (c *Channel) setStatus(ctx context.Context, status Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()

	if c.transitions != nil {
		c.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("topic", string(c.topic)),
			attribute.String("state", string(status.State)),
		))
	}

	if c.handlers.OnStateChange != nil {
		c.safely(ctx, "OnStateChange", func() { c.handlers.OnStateChange(status) })
	}
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)

	c.setStatus(ctx, Status{State: StateConnecting})

	var (
		events      <-chan Event
		unsubscribe context.CancelFunc
		failed      bool
		subscribed  bool
	)
	defer func() {
		if unsubscribe != nil {
			unsubscribe()
		}
	}()

	// attempt either consumes the live subscription until it breaks or, when
	// there is none, subscribes. A confirmed subscription ends the current
	// retry cycle with errSubscribed so the next cycle starts from zero.
	attempt := func() error {
		if events == nil {
			ev, unsub, err := c.subscribe(ctx)
			if err != nil {
				return c.attemptErr(ctx, err)
			}
			events, unsubscribe = ev, unsub
			return errSubscribed
		}

		err := c.consume(ctx, events)
		unsubscribe()
		events, unsubscribe = nil, nil
		return c.attemptErr(ctx, err)
	}

	for {
		r := retry.New(
			retry.WithAttempts(uint(max(c.cfg.maxAttempts, 0))+1),
			retry.WithDelay(c.cfg.baseDelay),
			retry.WithMaxDelay(c.cfg.maxDelay),
			retry.WithRetryIf(retry.Permanent(errSubscribed)),
			retry.WithOnRetry(func(n uint, err error) {
				failed = true
				c.onFailure(ctx, int(n), err)
			}),
		)

		err := r.Execute(ctx, attempt)
		if ctx.Err() != nil {
			return
		}

		if !errors.Is(err, errSubscribed) {
			c.setStatus(ctx, Status{State: StateFailed, Attempts: c.cfg.maxAttempts})
			logger.Error(ctx, "realtime channel failed",
				"stream.attempts", c.cfg.maxAttempts,
				"error", err,
			)
			c.reportError(ctx, err, true)
			return
		}

		// Anything that happened before this subscription, whether a dropped
		// one or failed first attempts, may have been missed.
		resubscribed := subscribed || failed
		subscribed, failed = true, false

		c.setStatus(ctx, Status{State: StateSubscribed})
		logger.Info(ctx, "realtime channel subscribed", "stream.resubscribed", resubscribed)

		if resubscribed && c.handlers.OnReconnect != nil {
			c.safely(ctx, "OnReconnect", func() { c.handlers.OnReconnect(ctx) })
		}
	}
}

// onFailure reports the n-th (zero-based) failure of the current retry cycle.
// The last one is left to run, which reports it as terminal.
func (c *Channel) onFailure(ctx context.Context, n int, err error) {
	c.setStatus(ctx, Status{State: StateError, Attempts: n})
	if n >= c.cfg.maxAttempts {
		return
	}

	attempts := n + 1
	delay := retry.Backoff(c.cfg.baseDelay, c.cfg.maxDelay, uint(attempts))

	logger.Warn(ctx, "realtime channel error, reconnecting",
		"stream.attempts", attempts,
		"stream.delay", delay,
		"error", err,
	)
	c.reportError(ctx, err, false)
	c.setStatus(ctx, Status{State: StateReconnecting, Attempts: attempts, Delay: delay})
}

// attemptErr stops the retry cycle once the channel is closing.
func (c *Channel) attemptErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return retry.Unrecoverable(ctx.Err())
	}
	return err
}

// consume dispatches events until the subscription breaks.
func (c *Channel) consume(ctx context.Context, events <-chan Event) error {
	for {
		event, ok := chflow.Receive(ctx, events)
		if !ok {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return ErrStreamClosed
		}

		if event.Err != nil {
			return event.Err
		}

		c.dispatch(ctx, event)
	}
}

// subscribe asks the source for a subscription and waits at most the
// subscribe timeout for it to be confirmed.
func (c *Channel) subscribe(ctx context.Context) (<-chan Event, context.CancelFunc, error) {
	attemptCtx, cancel := context.WithCancel(ctx)

	type result struct {
		events <-chan Event
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		events, err := c.source.Subscribe(attemptCtx, c.topic, c.wallet)
		resultCh <- result{events: events, err: err}
	}()

	timer := time.NewTimer(c.cfg.subscribeTimeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			cancel()
			return nil, nil, fmt.Errorf("subscribe %s: %w", c.topic, res.err)
		}
		return res.events, cancel, nil
	case <-timer.C:
		cancel()
		return nil, nil, ErrSubscribeTimeout
	case <-ctx.Done():
		cancel()
		return nil, nil, ctx.Err()
	}
}

func (c *Channel) dispatch(ctx context.Context, event Event) {
	switch event.Type {
	case EventInsert:
		if c.handlers.OnInsert != nil {
			c.safely(ctx, "OnInsert", func() { c.handlers.OnInsert(ctx, event.Record) })
		}
	case EventUpdate:
		if c.handlers.OnUpdate != nil {
			c.safely(ctx, "OnUpdate", func() { c.handlers.OnUpdate(ctx, event.Record) })
		}
	default:
		logger.Debug(ctx, "ignoring realtime event", "stream.event_type", event.Type)
	}
}

func (c *Channel) reportError(ctx context.Context, err error, terminal bool) {
	if c.handlers.OnError != nil {
		c.safely(ctx, "OnError", func() { c.handlers.OnError(ctx, err, terminal) })
	}
}

func (c *Channel) safely(ctx context.Context, handler string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "realtime handler panicked",
				"stream.handler", handler,
				"error", fmt.Sprint(r),
			)
		}
	}()

	fn()
}
