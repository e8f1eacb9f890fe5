// Package walletsync keeps the cached view of observed wallets consistent
// with the realtime stream and, when no realtime slot is available, with a
// polling fallback. Every mutation of a wallet's cache runs on that wallet's
// update queue and feeds the change detector, whose notifications go to the
// publisher.
package walletsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/walletsync/internal/cachestore"
	"github.com/gabapcia/walletsync/internal/notify"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/subscription"
	"github.com/gabapcia/walletsync/internal/txmerge"
	"github.com/gabapcia/walletsync/internal/updatequeue"
	"github.com/gabapcia/walletsync/internal/walletstate"
)

const (
	DefaultMaxCacheTransactions = 100
	DefaultPollInterval         = 30 * time.Second
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrServiceNotStarted is returned by wallet operations before Start.
	ErrServiceNotStarted = errors.New("service not started")

	// ErrWalletNotActive is returned when no consumer activated the wallet.
	ErrWalletNotActive = errors.New("wallet not active")

	// ErrUpdateDropped is returned when the wallet's queue is full.
	ErrUpdateDropped = errors.New("update dropped, queue full")
)

// Service is the entrypoint consumers use to observe wallets.
type Service interface {
	// Start makes the service ready to accept wallets. Call Close to tear
	// everything down.
	Start(ctx context.Context) error

	// ActivateWallet registers a consumer of wallet. The first consumer
	// subscribes it and triggers a full sync.
	ActivateWallet(ctx context.Context, wallet string) error

	// DeactivateWallet unregisters a consumer. The last one tears the wallet's
	// subscription or poller down and forgets its dedup state.
	DeactivateWallet(ctx context.Context, wallet string) error

	// Refresh schedules a full resync of an active wallet.
	Refresh(ctx context.Context, wallet string) error

	// TrackSubmission inserts tx at the head of the wallet's pending
	// collection as an optimistic placeholder, ahead of the realtime event
	// that confirms it.
	TrackSubmission(ctx context.Context, wallet string, tx txmerge.RawTransaction) error

	// Transactions returns the cached collections of wallet.
	Transactions(ctx context.Context, wallet string) (notify.TransactionSet, error)

	// Info returns the cached on-chain state of wallet.
	Info(ctx context.Context, wallet string) (WalletInfo, error)

	Close()
}

type closeFunc func()

// poller resyncs one wallet on a ticker while it has no realtime slot.
type poller struct {
	cancel context.CancelFunc
	queue  *updatequeue.Queue
}

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc
	ctx       context.Context

	consumers map[string]int
	pollers   map[string]*poller

	chain         ChainReader
	query         QueryLayer
	infos         cachestore.Typed[WalletInfo]
	txs           cachestore.Typed[[]txmerge.TransactionRecord]
	cache         cachestore.Store
	registry      *walletstate.Registry
	detector      *notify.Detector
	publisher     notify.Publisher
	subscriptions subscription.Manager

	retry            retry.Retry
	pollInterval     time.Duration
	maxTransactions  int
	trackedModules   []string
	pollQueueOptions []updatequeue.Option
}

var _ Service = (*service)(nil)

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.ctx = ctx
	s.closeFunc = func() {
		cancel()
		s.subscriptions.Cleanup()
		for wallet, p := range s.pollers {
			p.cancel()
			p.queue.Close()
			delete(s.pollers, wallet)
		}
		clear(s.consumers)
		s.registry.Reset()
	}
	s.isStarted = true

	logger.Info(ctx, "wallet sync started", "sync.poll_interval", s.pollInterval)
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

func (s *service) ActivateWallet(ctx context.Context, wallet string) error {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isStarted {
		return ErrServiceNotStarted
	}

	s.consumers[w]++
	if s.subscriptions.IsActive(w) {
		return nil
	}

	if err := s.subscriptions.Activate(s.ctx, w, s.callbacks(w)); err != nil {
		s.consumers[w]--
		if s.consumers[w] <= 0 {
			delete(s.consumers, w)
		}
		return err
	}

	// A poller running for this wallet hands over to the new subscription.
	s.stopPollingLocked(w)

	if !s.subscriptions.Enqueue(w, s.resync(w, false)) {
		logger.Warn(ctx, "initial sync dropped", "wallet.address", w)
	}
	return nil
}

func (s *service) DeactivateWallet(ctx context.Context, wallet string) error {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumers[w] == 0 {
		return ErrWalletNotActive
	}

	s.consumers[w]--
	if s.consumers[w] > 0 {
		return nil
	}

	delete(s.consumers, w)
	s.subscriptions.Deactivate(w)
	s.stopPollingLocked(w)
	s.registry.Forget(w)

	logger.Info(ctx, "wallet released", "wallet.address", w)
	return nil
}

func (s *service) Refresh(ctx context.Context, wallet string) error {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumers[w] == 0 {
		return ErrWalletNotActive
	}

	return s.enqueueLocked(ctx, w, s.resync(w, false))
}

func (s *service) TrackSubmission(ctx context.Context, wallet string, tx txmerge.RawTransaction) error {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return err
	}

	tx.Wallet = w
	rec, err := txmerge.ToRecord(tx, nil)
	if err != nil {
		return err
	}
	rec.Optimistic = true

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumers[w] == 0 {
		return ErrWalletNotActive
	}

	return s.enqueueLocked(ctx, w, s.insertPlaceholder(w, rec))
}

// enqueueLocked routes process to the queue currently serving w: its
// subscription when it holds a realtime slot, its poller otherwise.
func (s *service) enqueueLocked(ctx context.Context, w string, process updatequeue.Processor) error {
	if s.subscriptions.IsActive(w) {
		if !s.subscriptions.Enqueue(w, process) {
			return ErrUpdateDropped
		}
		return nil
	}

	if p, ok := s.pollers[w]; ok {
		if !p.queue.Enqueue(logger.Derive(s.ctx, "wallet.address", w), process) {
			return ErrUpdateDropped
		}
		return nil
	}

	logger.Warn(ctx, "wallet has neither subscription nor poller", "wallet.address", w)
	return ErrWalletNotActive
}

func (s *service) Transactions(ctx context.Context, wallet string) (notify.TransactionSet, error) {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return notify.TransactionSet{}, err
	}

	return s.loadTransactions(ctx, w)
}

func (s *service) Info(ctx context.Context, wallet string) (WalletInfo, error) {
	w, err := subscription.NormalizeWallet(wallet)
	if err != nil {
		return WalletInfo{}, err
	}

	return s.infos.Read(ctx, CacheKey(KeyInfo, w))
}

type config struct {
	retry            retry.Retry
	pollInterval     time.Duration
	maxTransactions  int
	trackedModules   []string
	pollQueueOptions []updatequeue.Option
}

// Option configures the service built by New.
type Option func(*config)

// WithRetry sets the policy for auxiliary fetches.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithPollInterval sets how often wallets without a realtime slot are
// resynced. Non-positive values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxCacheTransactions caps each cached collection.
func WithMaxCacheTransactions(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTransactions = n
		}
	}
}

// WithTrackedModules adds modules whose status is read for every wallet, on
// top of those the query layer reports.
func WithTrackedModules(modules ...string) Option {
	return func(c *config) {
		c.trackedModules = append(c.trackedModules, modules...)
	}
}

// WithPollQueueOptions configures the queue of each polled wallet.
func WithPollQueueOptions(opts ...updatequeue.Option) Option {
	return func(c *config) {
		c.pollQueueOptions = append(c.pollQueueOptions, opts...)
	}
}

// New wires the sync service. registry must be the one detector was built
// with.
func New(
	chain ChainReader,
	query QueryLayer,
	cache cachestore.Store,
	registry *walletstate.Registry,
	detector *notify.Detector,
	publisher notify.Publisher,
	subscriptions subscription.Manager,
	opts ...Option,
) *service {
	cfg := config{
		retry:           retry.New(),
		pollInterval:    DefaultPollInterval,
		maxTransactions: DefaultMaxCacheTransactions,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		consumers:        make(map[string]int),
		pollers:          make(map[string]*poller),
		chain:            chain,
		query:            query,
		cache:            cache,
		infos:            cachestore.NewTyped[WalletInfo](cache),
		txs:              cachestore.NewTyped[[]txmerge.TransactionRecord](cache),
		registry:         registry,
		detector:         detector,
		publisher:        publisher,
		subscriptions:    subscriptions,
		retry:            cfg.retry,
		pollInterval:     cfg.pollInterval,
		maxTransactions:  cfg.maxTransactions,
		trackedModules:   cfg.trackedModules,
		pollQueueOptions: cfg.pollQueueOptions,
	}
}
