package stream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const wallet = "0x8Ba1f109551bD432803012645Ac136ddd64DBA72"

func init() {
	_ = logger.Init("error")
}

type timeline struct {
	mu       sync.Mutex
	statuses []Status
	errs     []bool
	inserts  []string
	updates  []string
	resyncs  int
}

func (tl *timeline) handlers() Handlers {
	return Handlers{
		OnInsert: func(_ context.Context, record json.RawMessage) {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			tl.inserts = append(tl.inserts, string(record))
		},
		OnUpdate: func(_ context.Context, record json.RawMessage) {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			tl.updates = append(tl.updates, string(record))
		},
		OnReconnect: func(context.Context) {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			tl.resyncs++
		},
		OnError: func(_ context.Context, _ error, terminal bool) {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			tl.errs = append(tl.errs, terminal)
		},
		OnStateChange: func(s Status) {
			tl.mu.Lock()
			defer tl.mu.Unlock()
			tl.statuses = append(tl.statuses, s)
		},
	}
}

func (tl *timeline) lock() func() {
	tl.mu.Lock()
	return tl.mu.Unlock
}

func waitDone(t *testing.T, c *Channel) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("channel loop did not exit")
	}
}

func TestChannel_DispatchesEvents(t *testing.T) {
	events := make(chan Event, 3)
	events <- Event{Type: EventInsert, Record: json.RawMessage(`{"tx_hash":"0x1"}`)}
	events <- Event{Type: EventUpdate, Record: json.RawMessage(`{"tx_hash":"0x1","executed":true}`)}
	events <- Event{Type: "DELETE", Record: json.RawMessage(`{}`)}

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).Return(events, nil).Once()

	tl := &timeline{}
	c := NewChannel(src, TopicTransactions, wallet, tl.handlers())
	require.NoError(t, c.Start(t.Context()))
	assert.ErrorIs(t, c.Start(t.Context()), ErrAlreadyStarted)

	require.Eventually(t, func() bool {
		defer tl.lock()()
		return len(tl.updates) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StateSubscribed, c.Status().State)

	c.Close()
	waitDone(t, c)

	defer tl.lock()()
	assert.Equal(t, []string{`{"tx_hash":"0x1"}`}, tl.inserts)
	assert.Equal(t, []string{`{"tx_hash":"0x1","executed":true}`}, tl.updates)
	assert.Empty(t, tl.errs)
	assert.Zero(t, tl.resyncs)
}

func TestChannel_FailsAfterMaxAttempts(t *testing.T) {
	errDown := errors.New("realtime service unavailable")

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicDeposits, wallet).Return(nil, errDown).Times(4)

	tl := &timeline{}
	c := NewChannel(src, TopicDeposits, wallet, tl.handlers(),
		WithBaseDelay(time.Millisecond),
		WithMaxDelay(3*time.Millisecond),
		WithMaxAttempts(3),
	)
	require.NoError(t, c.Start(t.Context()))
	waitDone(t, c)

	assert.Equal(t, Status{State: StateFailed, Attempts: 3}, c.Status())

	defer tl.lock()()
	assert.Equal(t, []bool{false, false, false, true}, tl.errs)

	var delays []time.Duration
	for _, s := range tl.statuses {
		if s.State == StateReconnecting {
			delays = append(delays, s.Delay)
		}
	}
	assert.Equal(t, []time.Duration{2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}, delays)
	assert.Equal(t, StateFailed, tl.statuses[len(tl.statuses)-1].State)
}

func TestChannel_ResetsAttemptsAndSignalsReconnect(t *testing.T) {
	first := make(chan Event)
	second := make(chan Event)

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).Return(nil, errors.New("dial tcp: refused")).Once()
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).Return(first, nil).Once()
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).Return(second, nil).Once()

	tl := &timeline{}
	c := NewChannel(src, TopicTransactions, wallet, tl.handlers(),
		WithBaseDelay(time.Millisecond),
		WithMaxAttempts(2),
	)
	require.NoError(t, c.Start(t.Context()))

	// The first subscription follows a failed attempt, so it is a reconnect.
	require.Eventually(t, func() bool {
		defer tl.lock()()
		return tl.resyncs == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, Status{State: StateSubscribed}, c.Status())

	// The source drops the first subscription.
	close(first)

	require.Eventually(t, func() bool {
		defer tl.lock()()
		return tl.resyncs == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, Status{State: StateSubscribed}, c.Status())

	c.Close()
	waitDone(t, c)

	defer tl.lock()()
	assert.Equal(t, []bool{false, false}, tl.errs)
	assert.Equal(t, 2, tl.resyncs)

	var reconnecting []Status
	for _, s := range tl.statuses {
		if s.State == StateReconnecting {
			reconnecting = append(reconnecting, s)
		}
	}
	assert.Equal(t, []Status{
		{State: StateReconnecting, Attempts: 1, Delay: 2 * time.Millisecond},
		{State: StateReconnecting, Attempts: 1, Delay: 2 * time.Millisecond},
	}, reconnecting, "attempts restart from zero after every subscription")
}

func TestChannel_FirstSubscriptionIsNotAReconnect(t *testing.T) {
	events := make(chan Event)

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicDeposits, wallet).Return(events, nil).Once()

	tl := &timeline{}
	c := NewChannel(src, TopicDeposits, wallet, tl.handlers())
	require.NoError(t, c.Start(t.Context()))
	require.Eventually(t, func() bool { return c.Status().State == StateSubscribed }, time.Second, time.Millisecond)

	c.Close()
	waitDone(t, c)

	defer tl.lock()()
	assert.Zero(t, tl.resyncs)
	assert.Empty(t, tl.errs)
}

func TestChannel_ErrorEventBreaksSubscription(t *testing.T) {
	events := make(chan Event, 1)
	events <- Event{Err: errors.New("channel error")}

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicDeposits, wallet).Return(events, nil).Once()

	tl := &timeline{}
	c := NewChannel(src, TopicDeposits, wallet, tl.handlers(), WithMaxAttempts(0))
	require.NoError(t, c.Start(t.Context()))
	waitDone(t, c)

	assert.Equal(t, StateFailed, c.Status().State)
	defer tl.lock()()
	assert.Equal(t, []bool{true}, tl.errs)
}

func TestChannel_SubscribeTimeout(t *testing.T) {
	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).
		RunAndReturn(func(ctx context.Context, _ Topic, _ string) (<-chan Event, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	var got error
	c := NewChannel(src, TopicTransactions, wallet, Handlers{
		OnError: func(_ context.Context, err error, terminal bool) {
			got = err
			assert.True(t, terminal)
		},
	},
		WithSubscribeTimeout(10*time.Millisecond),
		WithMaxAttempts(0),
	)
	require.NoError(t, c.Start(t.Context()))
	waitDone(t, c)

	assert.ErrorIs(t, got, ErrSubscribeTimeout)
}

func TestChannel_RecoversHandlerPanics(t *testing.T) {
	events := make(chan Event, 2)
	events <- Event{Type: EventInsert, Record: json.RawMessage(`"boom"`)}
	events <- Event{Type: EventInsert, Record: json.RawMessage(`"ok"`)}

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).Return(events, nil).Once()

	var mu sync.Mutex
	var seen []string
	c := NewChannel(src, TopicTransactions, wallet, Handlers{
		OnInsert: func(_ context.Context, record json.RawMessage) {
			mu.Lock()
			seen = append(seen, string(record))
			mu.Unlock()
			if string(record) == `"boom"` {
				panic("handler bug")
			}
		},
	})
	require.NoError(t, c.Start(t.Context()))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, time.Millisecond)

	c.Close()
	waitDone(t, c)
	assert.Equal(t, StateSubscribed, c.Status().State)
}

func TestChannel_CloseUnsubscribes(t *testing.T) {
	unsubscribed := make(chan struct{})

	src := NewSourceMock(t)
	src.EXPECT().Subscribe(mock.Anything, TopicTransactions, wallet).
		RunAndReturn(func(ctx context.Context, _ Topic, _ string) (<-chan Event, error) {
			events := make(chan Event)
			go func() {
				<-ctx.Done()
				close(unsubscribed)
			}()
			return events, nil
		}).Once()

	c := NewChannel(src, TopicTransactions, wallet, Handlers{})
	require.NoError(t, c.Start(t.Context()))
	require.Eventually(t, func() bool { return c.Status().State == StateSubscribed }, time.Second, time.Millisecond)

	c.Close()
	c.Close()
	waitDone(t, c)

	select {
	case <-unsubscribed:
	case <-time.After(time.Second):
		t.Fatal("subscription context was not canceled")
	}
}
