package notify

import (
	"context"
	"errors"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Sink receives every notification, e.g. an in-app feed or an outbox.
type Sink interface {
	Enqueue(ctx context.Context, n Notification) error
}

// Pusher delivers a notification outside the process (OS or device push).
type Pusher interface {
	Push(ctx context.Context, n Notification) error
}

// PermissionChecker reports whether the user granted push delivery.
type PermissionChecker interface {
	PushAllowed(ctx context.Context) bool
}

// Publisher fans notifications out to the configured sinks and, when
// permitted, to the pusher.
type Publisher interface {
	Publish(ctx context.Context, notifications []Notification) error
}

// LogSink writes notifications to the structured log.
type LogSink struct{}

var _ Sink = LogSink{}

func (LogSink) Enqueue(ctx context.Context, n Notification) error {
	logger.Info(ctx, n.Message,
		"notification.kind", n.Kind,
		"notification.key", n.Key,
		"notification.severity", n.Severity,
		"wallet.address", n.Wallet,
	)
	return nil
}

type nopPusher struct{}

var _ Pusher = nopPusher{}

func (nopPusher) Push(context.Context, Notification) error { return nil }

type denyPermission struct{}

var _ PermissionChecker = denyPermission{}

func (denyPermission) PushAllowed(context.Context) bool { return false }

// StaticPermission is a PermissionChecker with a fixed answer.
type StaticPermission bool

func (p StaticPermission) PushAllowed(context.Context) bool { return bool(p) }

type config struct {
	sinks      []Sink
	pusher     Pusher
	permission PermissionChecker
}

// Option configures a Publisher.
type Option func(*config)

// WithSink adds a sink. Without any, notifications go to LogSink.
func WithSink(s Sink) Option {
	return func(c *config) {
		c.sinks = append(c.sinks, s)
	}
}

// WithPusher enables push delivery gated by permission.
func WithPusher(p Pusher, permission PermissionChecker) Option {
	return func(c *config) {
		c.pusher = p
		c.permission = permission
	}
}

type publisher struct {
	sinks      []Sink
	pusher     Pusher
	permission PermissionChecker

	emitted metric.Int64Counter
}

var _ Publisher = (*publisher)(nil)

// NewPublisher builds a Publisher from opts.
func NewPublisher(opts ...Option) *publisher {
	cfg := config{
		pusher:     nopPusher{},
		permission: denyPermission{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if len(cfg.sinks) == 0 {
		cfg.sinks = []Sink{LogSink{}}
	}

	emitted, _ := otel.Meter("github.com/gabapcia/walletsync/internal/notify").Int64Counter(
		"walletsync.notifications.emitted",
		metric.WithDescription("Notifications handed to sinks"),
	)

	return &publisher{
		sinks:      cfg.sinks,
		pusher:     cfg.pusher,
		permission: cfg.permission,
		emitted:    emitted,
	}
}

// Publish delivers each notification to every sink. Sink errors are joined
// and returned after all deliveries were attempted; push failures are only
// logged.
func (p *publisher) Publish(ctx context.Context, notifications []Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	var errs []error
	pushAllowed := p.permission.PushAllowed(ctx)

	for _, n := range notifications {
		for _, sink := range p.sinks {
			if err := sink.Enqueue(ctx, n); err != nil {
				errs = append(errs, err)
			}
		}

		if p.emitted != nil {
			p.emitted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(n.Kind))))
		}

		if !pushAllowed {
			continue
		}

		if err := p.pusher.Push(ctx, n); err != nil {
			logger.Warn(ctx, "push delivery failed",
				"notification.key", n.Key,
				"error", err,
			)
		}
	}

	return errors.Join(errs...)
}
