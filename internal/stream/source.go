package stream

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrSubscribeTimeout is reported when a subscription is not confirmed in time.
	ErrSubscribeTimeout = errors.New("subscription not confirmed before timeout")

	// ErrStreamClosed is reported when the source closes an established subscription.
	ErrStreamClosed = errors.New("stream closed by source")

	// ErrAlreadyStarted is returned by Start on a running channel.
	ErrAlreadyStarted = errors.New("stream channel already started")
)

// Topic names a realtime table filtered by wallet.
type Topic string

const (
	TopicTransactions Topic = "transactions"
	TopicDeposits     Topic = "deposits"
)

// Topics lists every topic a wallet subscribes to.
var Topics = []Topic{TopicTransactions, TopicDeposits}

// EventType is the kind of row change carried by an Event.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
)

// Event is a single change delivered by a Source. Either Err is set, in which
// case the subscription is considered broken, or Type and Record are.
type Event struct {
	Type   EventType       `json:"type"`
	Record json.RawMessage `json:"record"`
	Err    error           `json:"-"`
}

// Source is a push-based realtime event source.
type Source interface {
	// Subscribe opens a subscription to topic filtered by wallet. It returns
	// once the subscription is confirmed, or an error if it could not be.
	//
	// The returned channel carries row changes until ctx is canceled, which
	// also unsubscribes, or until the source drops the subscription, in which
	// case the channel is closed.
	Subscribe(ctx context.Context, topic Topic, wallet string) (<-chan Event, error)
}
