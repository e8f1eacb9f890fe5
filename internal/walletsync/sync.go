package walletsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gabapcia/walletsync/internal/cachestore"
	"github.com/gabapcia/walletsync/internal/notify"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/validator"
	"github.com/gabapcia/walletsync/internal/stream"
	"github.com/gabapcia/walletsync/internal/subscription"
	"github.com/gabapcia/walletsync/internal/txmerge"
	"github.com/gabapcia/walletsync/internal/updatequeue"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/gabapcia/walletsync/internal/walletsync")

// callbacks routes the realtime output of wallet w onto its update queue.
func (s *service) callbacks(w string) subscription.Callbacks {
	enqueue := func(ctx context.Context, fn updatequeue.Processor) {
		if !s.subscriptions.Enqueue(w, fn) {
			logger.Warn(ctx, "realtime update dropped")
		}
	}

	return subscription.Callbacks{
		OnInsert: func(ctx context.Context, topic stream.Topic, record json.RawMessage) {
			enqueue(ctx, s.processorFor(w, topic, record))
		},
		OnUpdate: func(ctx context.Context, topic stream.Topic, record json.RawMessage) {
			enqueue(ctx, s.processorFor(w, topic, record))
		},
		OnReconnect: func(ctx context.Context, topic stream.Topic) {
			// Nothing that happened while disconnected is replayed.
			logger.Info(ctx, "realtime channel reconnected, resyncing wallet", "stream.topic", topic)
			enqueue(ctx, s.resync(w, true))
		},
		OnError: func(ctx context.Context, topic stream.Topic, err error, terminal bool) {
			if !terminal {
				return
			}
			logger.Warn(ctx, "realtime channel failed, falling back to polling",
				"stream.topic", topic,
				"error", err,
			)
			go s.abandonSubscription(ctx, w)
		},
		OnEvicted: func(ctx context.Context) {
			logger.Info(ctx, "realtime slot lost, falling back to polling")
			go s.fallBackToPolling(w)
		},
	}
}

func (s *service) processorFor(w string, topic stream.Topic, record json.RawMessage) updatequeue.Processor {
	if topic == stream.TopicDeposits {
		return func(ctx context.Context) error { return s.applyDeposit(ctx, w, record) }
	}
	return func(ctx context.Context) error { return s.applyTransaction(ctx, w, record) }
}

// live reports whether the scope of the running processor is still open. A
// processor whose scope is closed must not touch the wallet's cache or dedup
// state.
func live(ctx context.Context, discarding string) bool {
	if ctx.Err() == nil {
		return true
	}
	logger.Debug(ctx, "wallet scope closed, discarding update", "sync.discarded", discarding)
	return false
}

// fetch runs op under the retry policy. Context errors are not retried.
func (s *service) fetch(ctx context.Context, op func() error) error {
	return s.retry.Execute(ctx, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return op()
	})
}

// applyTransaction merges one realtime transaction row into the cache.
func (s *service) applyTransaction(ctx context.Context, w string, payload json.RawMessage) error {
	ctx, span := tracer.Start(ctx, "walletsync.apply_transaction", trace.WithAttributes(attribute.String("wallet.address", w)))
	defer span.End()

	raw, err := txmerge.DecodeRaw(payload)
	if err != nil {
		logger.Warn(ctx, "dropping malformed transaction event", "error", err)
		return nil
	}

	if !strings.EqualFold(raw.Wallet, w) {
		logger.Warn(ctx, "dropping transaction event of another wallet", "tx.wallet", raw.Wallet)
		return nil
	}

	var confirmations []txmerge.Confirmation
	err = s.fetch(ctx, func() (err error) {
		confirmations, err = s.query.ActiveConfirmations(ctx, raw.Hash)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("fetch confirmations of %s: %w", raw.Hash, err)
	}

	rec, err := txmerge.ToRecord(raw, confirmations)
	if err != nil {
		logger.Warn(ctx, "dropping malformed transaction event", "error", err)
		return nil
	}

	if !live(ctx, "transaction update") {
		return nil
	}

	prev, err := s.loadTransactions(ctx, w)
	if err != nil {
		return err
	}

	curr, err := s.mergeTransaction(ctx, w, rec)
	if err != nil {
		if !live(ctx, "transaction update") {
			return nil
		}
		return err
	}

	if !live(ctx, "transaction notifications") {
		return nil
	}

	return s.publish(ctx, s.detector.DetectTransactions(w, &prev, curr))
}

// mergeTransaction applies rec to the cached collections of w and returns
// the resulting collections.
func (s *service) mergeTransaction(ctx context.Context, w string, rec txmerge.TransactionRecord) (notify.TransactionSet, error) {
	var curr notify.TransactionSet
	historyKey := map[txmerge.Status]string{
		txmerge.StatusExecuted:  KeyExecuted,
		txmerge.StatusCancelled: KeyCancelled,
	}

	err := s.txs.Write(ctx, CacheKey(KeyPending, w), func(old []txmerge.TransactionRecord, _ bool) ([]txmerge.TransactionRecord, error) {
		if rec.Status() == txmerge.StatusPending {
			curr.Pending = txmerge.Upsert(old, rec, s.maxTransactions)
		} else {
			curr.Pending = txmerge.Remove(old, rec.Hash)
		}
		return curr.Pending, nil
	})
	if err != nil {
		return curr, fmt.Errorf("write pending: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return curr, err
	}

	if kind, ok := historyKey[rec.Status()]; ok {
		err := s.txs.Write(ctx, CacheKey(kind, w), func(old []txmerge.TransactionRecord, _ bool) ([]txmerge.TransactionRecord, error) {
			_, history := txmerge.MoveToHistory(nil, old, rec, s.maxTransactions)
			return history, nil
		})
		if err != nil {
			return curr, fmt.Errorf("write %s: %w", kind, err)
		}
	}

	executed, err := s.readCollection(ctx, CacheKey(KeyExecuted, w))
	if err != nil {
		return curr, err
	}
	cancelled, err := s.readCollection(ctx, CacheKey(KeyCancelled, w))
	if err != nil {
		return curr, err
	}

	curr.Executed, curr.Cancelled = executed, cancelled
	return curr, nil
}

// insertPlaceholder stores rec at the head of the pending collection of w
// unless a record with the same hash is already cached. Placeholders are not
// notified: the realtime event that replaces them is.
func (s *service) insertPlaceholder(w string, rec txmerge.TransactionRecord) updatequeue.Processor {
	return func(ctx context.Context) error {
		if !live(ctx, "submission") {
			return nil
		}

		err := s.txs.Write(ctx, CacheKey(KeyPending, w), func(old []txmerge.TransactionRecord, _ bool) ([]txmerge.TransactionRecord, error) {
			if slices.Contains(txmerge.Hashes(old), rec.Hash) {
				return nil, cachestore.ErrSkipWrite
			}
			return txmerge.InsertPending(old, rec, s.maxTransactions), nil
		})
		if err != nil {
			return fmt.Errorf("write placeholder %s: %w", rec.Hash, err)
		}

		logger.Debug(ctx, "submission tracked", "tx.hash", rec.Hash)
		return nil
	}
}

// applyDeposit refreshes the wallet info after an incoming transfer so the
// balance change is detected.
func (s *service) applyDeposit(ctx context.Context, w string, payload json.RawMessage) error {
	var deposit Deposit
	if err := json.Unmarshal(payload, &deposit); err != nil {
		logger.Warn(ctx, "dropping malformed deposit event", "error", err)
		return nil
	}
	if err := validator.Validate(deposit); err != nil {
		logger.Warn(ctx, "dropping malformed deposit event", "error", err)
		return nil
	}

	if !strings.EqualFold(deposit.Wallet, w) {
		logger.Warn(ctx, "dropping deposit event of another wallet", "deposit.wallet", deposit.Wallet)
		return nil
	}

	logger.Debug(ctx, "deposit observed", "tx.hash", deposit.TxHash, "deposit.value", deposit.Value)
	return s.syncInfo(ctx, w, nil)
}

// resync refetches everything about w. With invalidate the cached keys are
// dropped first so readers never see pre-disconnect data as current.
func (s *service) resync(w string, invalidate bool) updatequeue.Processor {
	return func(ctx context.Context) error {
		ctx, span := tracer.Start(ctx, "walletsync.resync", trace.WithAttributes(
			attribute.String("wallet.address", w),
			attribute.Bool("sync.invalidate", invalidate),
		))
		defer span.End()

		prevInfo, prevInfoErr := s.infos.Read(ctx, CacheKey(KeyInfo, w))
		prevTxs, prevTxsErr := s.loadTransactions(ctx, w)

		if invalidate {
			if err := s.cache.Invalidate(ctx, CacheKeys(w)...); err != nil {
				logger.Error(ctx, "could not invalidate wallet cache", "error", err)
			}
		}

		var prevInfoPtr *WalletInfo
		if prevInfoErr == nil {
			prevInfoPtr = &prevInfo
		}
		infoErr := s.syncInfo(ctx, w, prevInfoPtr)

		var prevTxsPtr *notify.TransactionSet
		if prevTxsErr == nil {
			prevTxsPtr = &prevTxs
		}
		txErr := s.syncTransactions(ctx, w, prevTxsPtr)

		if err := errors.Join(infoErr, txErr); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		return nil
	}
}

// syncInfo fetches the on-chain state of w, caches it and runs wallet-level
// detection against prev, or against the cached value when prev is nil.
func (s *service) syncInfo(ctx context.Context, w string, prev *WalletInfo) error {
	modules := mergeModules(s.trackedModules, nil)
	err := s.fetch(ctx, func() error {
		known, err := s.query.WalletModules(ctx, w)
		if err != nil {
			return err
		}
		modules = mergeModules(s.trackedModules, known)
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "could not list wallet modules", "error", err)
	}

	var info WalletInfo
	err = s.fetch(ctx, func() (err error) {
		info, err = s.chain.WalletInfo(ctx, w, modules)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch wallet info: %w", err)
	}

	if !live(ctx, "wallet info") {
		return nil
	}

	err = s.infos.Write(ctx, CacheKey(KeyInfo, w), func(old WalletInfo, found bool) (WalletInfo, error) {
		if prev == nil && found {
			prev = &old
		}
		return info, nil
	})
	if err != nil {
		return fmt.Errorf("write wallet info: %w", err)
	}

	if !live(ctx, "wallet notifications") {
		return nil
	}

	// The first observation in this process only seeds dedup state.
	if _, seen := s.registry.LastBalance(w); !seen {
		prev = nil
	}

	return s.publish(ctx, s.detector.DetectWalletChanges(w, walletState(prev), *walletState(&info)))
}

// syncTransactions refetches the transaction collections of w from the query
// layer and replaces the cached ones.
func (s *service) syncTransactions(ctx context.Context, w string, prev *notify.TransactionSet) error {
	var pending, history []txmerge.RawTransaction
	err := s.fetch(ctx, func() (err error) {
		pending, err = s.query.PendingTransactions(ctx, w, s.maxTransactions)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch pending transactions: %w", err)
	}

	err = s.fetch(ctx, func() (err error) {
		history, err = s.query.HistoryTransactions(ctx, w, s.maxTransactions)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch history transactions: %w", err)
	}

	var curr notify.TransactionSet
	for _, raw := range slices.Concat(pending, history) {
		var confirmations []txmerge.Confirmation
		err := s.fetch(ctx, func() (err error) {
			confirmations, err = s.query.ActiveConfirmations(ctx, raw.Hash)
			return err
		})
		if err != nil {
			return fmt.Errorf("fetch confirmations of %s: %w", raw.Hash, err)
		}

		rec, err := txmerge.ToRecord(raw, confirmations)
		if err != nil {
			logger.Warn(ctx, "skipping malformed transaction", "tx.hash", raw.Hash, "error", err)
			continue
		}

		switch rec.Status() {
		case txmerge.StatusPending:
			curr.Pending = append(curr.Pending, rec)
		case txmerge.StatusExecuted:
			curr.Executed = append(curr.Executed, rec)
		case txmerge.StatusCancelled:
			curr.Cancelled = append(curr.Cancelled, rec)
		}
	}
	curr.Pending = capped(curr.Pending, s.maxTransactions)
	curr.Executed = capped(curr.Executed, s.maxTransactions)
	curr.Cancelled = capped(curr.Cancelled, s.maxTransactions)

	if !live(ctx, "transaction resync") {
		return nil
	}

	collections := map[string][]txmerge.TransactionRecord{
		KeyPending:   curr.Pending,
		KeyExecuted:  curr.Executed,
		KeyCancelled: curr.Cancelled,
	}
	for kind, records := range collections {
		err := s.txs.Write(ctx, CacheKey(kind, w), func(old []txmerge.TransactionRecord, _ bool) ([]txmerge.TransactionRecord, error) {
			if kind == KeyPending {
				// Optimistic placeholders survive until their event arrives.
				for _, r := range old {
					if r.Optimistic && !slices.Contains(txmerge.Hashes(records), r.Hash) {
						records = txmerge.InsertPending(records, r, s.maxTransactions)
					}
				}
			}
			return records, nil
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", kind, err)
		}
		if !live(ctx, "transaction resync") {
			return nil
		}
	}

	return s.publish(ctx, s.detector.DetectTransactions(w, prev, curr))
}

func (s *service) loadTransactions(ctx context.Context, w string) (notify.TransactionSet, error) {
	var (
		set notify.TransactionSet
		err error
	)

	if set.Pending, err = s.readCollection(ctx, CacheKey(KeyPending, w)); err != nil {
		return set, err
	}
	if set.Executed, err = s.readCollection(ctx, CacheKey(KeyExecuted, w)); err != nil {
		return set, err
	}
	if set.Cancelled, err = s.readCollection(ctx, CacheKey(KeyCancelled, w)); err != nil {
		return set, err
	}

	return set, nil
}

// readCollection reads a cached collection. A missing key is empty.
func (s *service) readCollection(ctx context.Context, key string) ([]txmerge.TransactionRecord, error) {
	records, err := s.txs.Read(ctx, key)
	if errors.Is(err, cachestore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return records, nil
}

func (s *service) publish(ctx context.Context, notifications []notify.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	if err := s.publisher.Publish(ctx, notifications); err != nil {
		return fmt.Errorf("publish notifications: %w", err)
	}
	return nil
}

func walletState(info *WalletInfo) *notify.WalletState {
	if info == nil {
		return nil
	}

	return &notify.WalletState{
		Balance:   info.Balance,
		Owners:    info.Owners,
		Threshold: info.Threshold,
		Modules:   info.Modules,
	}
}

// mergeModules returns the checksummed union of both lists, sorted.
func mergeModules(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, m := range slices.Concat(a, b) {
		if common.IsHexAddress(m) {
			out = append(out, common.HexToAddress(m).Hex())
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func capped(list []txmerge.TransactionRecord, max int) []txmerge.TransactionRecord {
	if max > 0 && len(list) > max {
		return list[:max]
	}
	return list
}
