package walletsync

import (
	"context"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/updatequeue"
)

// fallBackToPolling polls w once it has lost its realtime slot. A newer
// subscription of w, activated before this ran, keeps the wallet.
func (s *service) fallBackToPolling(w string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subscriptions.IsActive(w) {
		return
	}
	s.startPollingLocked(w)
}

// abandonSubscription releases the subscription of w after a terminal channel
// failure and polls w instead. scope is the failed subscription's scope; once
// closed, the subscription it belonged to is gone and nothing is touched.
func (s *service) abandonSubscription(scope context.Context, w string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Err() != nil {
		return
	}

	// The slot is released so polling owns the wallet's cache.
	s.subscriptions.Deactivate(w)
	s.startPollingLocked(w)
}

// startPollingLocked resyncs w on a ticker until it is released or wins a
// realtime slot again. It is a no-op when w has no consumer or is already
// polled.
func (s *service) startPollingLocked(w string) {
	if !s.isStarted || s.consumers[w] == 0 {
		return
	}
	if _, ok := s.pollers[w]; ok {
		return
	}

	ctx, cancel := context.WithCancel(logger.Derive(s.ctx, "wallet.address", w))
	p := &poller{
		cancel: cancel,
		queue:  updatequeue.New("poll:"+w, s.pollQueueOptions...),
	}
	s.pollers[w] = p

	logger.Info(ctx, "polling wallet", "sync.poll_interval", s.pollInterval)
	go s.poll(ctx, w, p)
}

func (s *service) poll(ctx context.Context, w string, p *poller) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	// Catch up on whatever happened since the realtime path stopped.
	p.queue.Enqueue(ctx, s.resync(w, false))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.queue.Enqueue(ctx, s.resync(w, false)) {
				logger.Warn(ctx, "poll skipped, wallet queue full")
			}
		}
	}
}

func (s *service) stopPollingLocked(w string) {
	p, ok := s.pollers[w]
	if !ok {
		return
	}

	p.cancel()
	p.queue.Close()
	delete(s.pollers, w)
}
