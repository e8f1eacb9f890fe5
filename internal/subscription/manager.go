// Package subscription tracks which wallets are actively observed and owns
// the realtime channels, update queue and scope of each.
//
// At most a fixed number of wallets hold realtime subscriptions at once.
// Activating one more evicts the least recently activated wallet, whose
// OnEvicted callback runs before its channels are torn down so the consumer
// can fall back to polling.
package subscription

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/validator"
	"github.com/gabapcia/walletsync/internal/stream"
	"github.com/gabapcia/walletsync/internal/updatequeue"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// DefaultMaxSubscriptions bounds concurrently active wallets.
const DefaultMaxSubscriptions = 10

// ErrInvalidWallet is returned when a wallet is not a valid hex address.
var ErrInvalidWallet = errors.New("invalid wallet address")

// Manager controls realtime subscriptions per wallet.
type Manager interface {
	// Activate subscribes wallet to every configured topic. It is a no-op for
	// an active wallet and only fails on an invalid address; channel failures
	// are reported through cb.OnError.
	Activate(ctx context.Context, wallet string, cb Callbacks) error

	// Deactivate tears down the wallet's channels, queue and scope.
	Deactivate(wallet string)

	IsActive(wallet string) bool
	ActiveCount() int

	// ActiveWallets returns the active wallets, least recently activated first.
	ActiveWallets() []string

	// Enqueue runs fn on the wallet's update queue under the wallet's scope.
	// It returns false when the wallet is inactive or its queue is full.
	Enqueue(wallet string, fn updatequeue.Processor) bool

	// Cleanup tears every subscription down without eviction callbacks.
	Cleanup()
}

// Callbacks receive a wallet's realtime output. ctx is the wallet's scope; it
// is canceled once the wallet is deactivated or evicted.
type Callbacks struct {
	OnInsert    func(ctx context.Context, topic stream.Topic, record json.RawMessage)
	OnUpdate    func(ctx context.Context, topic stream.Topic, record json.RawMessage)
	OnReconnect func(ctx context.Context, topic stream.Topic)
	OnError     func(ctx context.Context, topic stream.Topic, err error, terminal bool)

	// OnEvicted runs before teardown when the wallet loses its slot to a newer
	// activation. ctx carries the wallet's log fields but is never canceled.
	OnEvicted func(ctx context.Context)
}

// Channel is the part of a stream channel the manager drives.
type Channel interface {
	Start(ctx context.Context) error
	Close()
}

// ChannelFactory builds the channel for one (wallet, topic) pair.
type ChannelFactory func(topic stream.Topic, wallet string, handlers stream.Handlers) (Channel, error)

// StreamFactory returns a ChannelFactory backed by stream.NewChannel.
func StreamFactory(source stream.Source, opts ...stream.Option) ChannelFactory {
	return func(topic stream.Topic, wallet string, handlers stream.Handlers) (Channel, error) {
		return stream.NewChannel(source, topic, wallet, handlers, opts...), nil
	}
}

// NormalizeWallet validates wallet and returns its checksummed form.
func NormalizeWallet(wallet string) (string, error) {
	if err := validator.Var(wallet, "required,eth_addr"); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidWallet, err)
	}

	return common.HexToAddress(wallet).Hex(), nil
}

type walletSubscription struct {
	wallet    string
	seq       uint64
	onEvicted func(ctx context.Context)

	ctx    context.Context
	cancel context.CancelFunc
	queue  *updatequeue.Queue

	mu       sync.Mutex
	closed   bool
	teardown []func()
}

// addTeardown registers fn, or runs it at once if the subscription is
// already torn down.
func (s *walletSubscription) addTeardown(fn func()) {
	s.mu.Lock()
	if !s.closed {
		s.teardown = append(s.teardown, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	fn()
}

// close cancels the scope, then closes the channels, then the queue.
func (s *walletSubscription) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	teardown := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	s.cancel()
	for _, fn := range teardown {
		fn()
	}
	s.queue.Close()
}

type config struct {
	maxSubscriptions int
	topics           []stream.Topic
	queueOptions     []updatequeue.Option
}

// Option configures a manager.
type Option func(*config)

func WithMaxSubscriptions(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSubscriptions = n
		}
	}
}

// WithTopics overrides the topics every wallet subscribes to.
func WithTopics(topics ...stream.Topic) Option {
	return func(c *config) {
		c.topics = topics
	}
}

// WithQueueOptions configures each wallet's update queue.
func WithQueueOptions(opts ...updatequeue.Option) Option {
	return func(c *config) {
		c.queueOptions = append(c.queueOptions, opts...)
	}
}

type manager struct {
	mu   sync.Mutex
	seq  uint64
	subs map[string]*walletSubscription

	factory          ChannelFactory
	maxSubscriptions int
	topics           []stream.Topic
	queueOptions     []updatequeue.Option

	evictions metric.Int64Counter
	active    metric.Int64UpDownCounter
}

var _ Manager = (*manager)(nil)

// New returns a Manager that opens channels through factory.
func New(factory ChannelFactory, opts ...Option) *manager {
	cfg := config{
		maxSubscriptions: DefaultMaxSubscriptions,
		topics:           stream.Topics,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := otel.Meter("github.com/gabapcia/walletsync/internal/subscription")
	evictions, _ := meter.Int64Counter("walletsync.subscriptions.evicted",
		metric.WithDescription("Wallet subscriptions evicted for capacity"))
	active, _ := meter.Int64UpDownCounter("walletsync.subscriptions.active",
		metric.WithDescription("Active wallet subscriptions"))

	return &manager{
		subs:             make(map[string]*walletSubscription),
		factory:          factory,
		maxSubscriptions: cfg.maxSubscriptions,
		topics:           cfg.topics,
		queueOptions:     cfg.queueOptions,
		evictions:        evictions,
		active:           active,
	}
}

func (m *manager) Activate(ctx context.Context, wallet string, cb Callbacks) error {
	key, err := NormalizeWallet(wallet)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if _, ok := m.subs[key]; ok {
		m.mu.Unlock()
		return nil
	}

	var victim *walletSubscription
	if len(m.subs) >= m.maxSubscriptions {
		victim = m.oldestLocked()
		delete(m.subs, victim.wallet)
	}

	m.seq++
	scope, cancel := context.WithCancel(logger.Derive(context.WithoutCancel(ctx), "wallet.address", key))
	sub := &walletSubscription{
		wallet:    key,
		seq:       m.seq,
		onEvicted: cb.OnEvicted,
		ctx:       scope,
		cancel:    cancel,
		queue:     updatequeue.New(key, m.queueOptions...),
	}
	m.subs[key] = sub
	m.mu.Unlock()

	if victim != nil {
		m.evict(ctx, victim)
	} else {
		m.addActive(ctx, 1)
	}

	for _, topic := range m.topics {
		m.openChannel(sub, topic, cb)
	}

	logger.Info(scope, "wallet subscription activated")
	return nil
}

func (m *manager) oldestLocked() *walletSubscription {
	var oldest *walletSubscription
	for _, sub := range m.subs {
		if oldest == nil || sub.seq < oldest.seq {
			oldest = sub
		}
	}
	return oldest
}

func (m *manager) evict(ctx context.Context, victim *walletSubscription) {
	if m.evictions != nil {
		m.evictions.Add(ctx, 1)
	}
	logger.Info(victim.ctx, "evicting least recently activated wallet subscription")

	if victim.onEvicted != nil {
		safely(victim.ctx, "OnEvicted", func() { victim.onEvicted(context.WithoutCancel(victim.ctx)) })
	}
	victim.close()
}

// openChannel creates and starts the channel of one topic. A failure is
// reported as terminal for that topic and never reaches the caller.
func (m *manager) openChannel(sub *walletSubscription, topic stream.Topic, cb Callbacks) {
	fail := func(err error) {
		logger.Error(sub.ctx, "could not open realtime channel",
			"stream.topic", topic,
			"error", err,
		)
		if cb.OnError != nil {
			safely(sub.ctx, "OnError", func() { cb.OnError(sub.ctx, topic, err, true) })
		}
	}

	var (
		ch  Channel
		err error
	)
	safely(sub.ctx, "ChannelFactory", func() {
		err = errors.New("channel factory panicked")
		ch, err = m.factory(topic, sub.wallet, handlersFor(topic, cb))
	})
	if err != nil {
		fail(err)
		return
	}

	if err := ch.Start(sub.ctx); err != nil {
		fail(err)
		return
	}

	sub.addTeardown(ch.Close)
}

func handlersFor(topic stream.Topic, cb Callbacks) stream.Handlers {
	var h stream.Handlers

	if cb.OnInsert != nil {
		h.OnInsert = func(ctx context.Context, record json.RawMessage) { cb.OnInsert(ctx, topic, record) }
	}
	if cb.OnUpdate != nil {
		h.OnUpdate = func(ctx context.Context, record json.RawMessage) { cb.OnUpdate(ctx, topic, record) }
	}
	if cb.OnReconnect != nil {
		h.OnReconnect = func(ctx context.Context) { cb.OnReconnect(ctx, topic) }
	}
	if cb.OnError != nil {
		h.OnError = func(ctx context.Context, err error, terminal bool) { cb.OnError(ctx, topic, err, terminal) }
	}

	return h
}

func (m *manager) Deactivate(wallet string) {
	key, err := NormalizeWallet(wallet)
	if err != nil {
		return
	}

	m.mu.Lock()
	sub, ok := m.subs[key]
	if ok {
		delete(m.subs, key)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	sub.close()
	m.addActive(context.Background(), -1)
	logger.Info(sub.ctx, "wallet subscription deactivated")
}

func (m *manager) IsActive(wallet string) bool {
	key, err := NormalizeWallet(wallet)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.subs[key]
	return ok
}

func (m *manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs)
}

func (m *manager) ActiveWallets() []string {
	m.mu.Lock()
	subs := make([]*walletSubscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	slices.SortFunc(subs, func(a, b *walletSubscription) int {
		return cmp.Compare(a.seq, b.seq)
	})

	wallets := make([]string, len(subs))
	for i, sub := range subs {
		wallets[i] = sub.wallet
	}
	return wallets
}

func (m *manager) Enqueue(wallet string, fn updatequeue.Processor) bool {
	key, err := NormalizeWallet(wallet)
	if err != nil {
		return false
	}

	m.mu.Lock()
	sub, ok := m.subs[key]
	m.mu.Unlock()

	if !ok {
		return false
	}

	return sub.queue.Enqueue(sub.ctx, fn)
}

func (m *manager) Cleanup() {
	m.mu.Lock()
	subs := m.subs
	m.subs = make(map[string]*walletSubscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	m.addActive(context.Background(), -int64(len(subs)))
}

func (m *manager) addActive(ctx context.Context, n int64) {
	if m.active != nil && n != 0 {
		m.active.Add(ctx, n)
	}
}

func safely(ctx context.Context, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "subscription callback panicked",
				"subscription.callback", name,
				"error", fmt.Sprint(r),
			)
		}
	}()

	fn()
}
