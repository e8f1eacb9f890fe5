// Package updatequeue serialises asynchronous state mutations.
//
// Event handlers often need further I/O before they can mutate shared state,
// and independent events can finish that I/O out of order. Handlers instead
// enqueue a Processor; a single worker runs processors strictly one after
// another in submission order, so mutations always apply in receipt order.
package updatequeue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMaxSize is the default bound on queued plus in-flight processors.
const DefaultMaxSize = 100

// Processor is a unit of deferred work. ctx is the scope the work was
// enqueued under; a processor must check it before mutating shared state.
type Processor func(ctx context.Context) error

type item struct {
	ctx context.Context
	fn  Processor
}

type config struct {
	maxSize int
}

// Option configures a Queue.
type Option func(*config)

// WithMaxSize bounds queued plus in-flight processors. Values below one are
// ignored.
func WithMaxSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// Queue runs processors one at a time in submission order.
type Queue struct {
	name    string
	maxSize int

	mu     sync.Mutex
	depth  int // queued + in-flight
	closed bool

	items  chan item
	cancel context.CancelFunc
	done   chan struct{}

	attrs   metric.MeasurementOption
	depthUD metric.Int64UpDownCounter
	dropped metric.Int64Counter
}

// New starts a queue named name (used in logs and metrics).
func New(name string, opts ...Option) *Queue {
	cfg := config{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := otel.Meter("github.com/gabapcia/walletsync/internal/updatequeue")
	depthUD, _ := meter.Int64UpDownCounter("walletsync.queue.depth",
		metric.WithDescription("Queued and in-flight update processors"))
	dropped, _ := meter.Int64Counter("walletsync.queue.dropped",
		metric.WithDescription("Update processors rejected because the queue was full"))

	ctx, cancel := context.WithCancel(logger.Derive(context.Background(), "queue.name", name))
	q := &Queue{
		name:    name,
		maxSize: cfg.maxSize,
		items:   make(chan item, cfg.maxSize),
		cancel:  cancel,
		done:    make(chan struct{}),
		attrs:   metric.WithAttributes(attribute.String("queue", name)),
		depthUD: depthUD,
		dropped: dropped,
	}

	go q.run(ctx)
	return q
}

// Enqueue appends fn to the queue. It returns false, discarding fn, when the
// queue is closed or already holds its maximum of queued plus in-flight
// processors; depth is left unchanged in that case.
func (q *Queue) Enqueue(ctx context.Context, fn Processor) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.depth >= q.maxSize {
		if q.dropped != nil {
			q.dropped.Add(ctx, 1, q.attrs)
		}
		logger.Warn(ctx, "update queue full, dropping update",
			"queue.name", q.name,
			"queue.depth", q.depth,
			"queue.max_size", q.maxSize,
		)
		return false
	}

	// depth bounds the buffered items, so this never blocks.
	if !chflow.TrySend(q.items, item{ctx: ctx, fn: fn}) {
		return false
	}

	q.depth++
	if q.depthUD != nil {
		q.depthUD.Add(ctx, 1, q.attrs)
	}
	return true
}

// Depth returns the number of queued plus in-flight processors.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.depth
}

// Close stops the worker. Queued processors are discarded; one already
// running completes but nothing runs after it. Close does not wait and is
// safe to call from inside a processor and more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.cancel()
}

// Done is closed once the worker has exited.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	defer q.discard(ctx)

	for {
		it, ok := chflow.Receive(ctx, q.items)
		if !ok {
			return
		}

		q.process(ctx, it)
		q.release(ctx, 1)

		if ctx.Err() != nil {
			return
		}
	}
}

// process runs one processor. Its error or panic is logged and never stops
// the worker.
func (q *Queue) process(workerCtx context.Context, it item) {
	if it.ctx.Err() != nil {
		logger.Debug(workerCtx, "skipping update of a closed scope", "error", it.ctx.Err())
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(it.ctx, "update processor panicked",
				"queue.name", q.name,
				"error", fmt.Sprint(r),
			)
		}
	}()

	if err := it.fn(it.ctx); err != nil {
		logger.Error(it.ctx, "update processor failed",
			"queue.name", q.name,
			"error", err,
		)
	}
}

func (q *Queue) release(ctx context.Context, n int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.depth -= n
	if q.depthUD != nil {
		q.depthUD.Add(ctx, -int64(n), q.attrs)
	}
}

// discard drops whatever is still buffered after the worker stopped.
func (q *Queue) discard(ctx context.Context) {
	n := 0
	for {
		select {
		case <-q.items:
			n++
		default:
			if n > 0 {
				logger.Debug(ctx, "discarded queued updates on close", "queue.discarded", n)
				q.release(context.WithoutCancel(ctx), n)
			}
			return
		}
	}
}
