package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"
	"github.com/gabapcia/walletsync/internal/stream"

	"github.com/redis/go-redis/v9"
)

// realtimeKeyPrefix namespaces the pub/sub channels carrying row changes.
const realtimeKeyPrefix = "realtime"

// realtimeChannel builds the pub/sub channel of a topic filtered by wallet.
//
// Format: "realtime:{topic}:{wallet}"
func realtimeChannel(topic stream.Topic, wallet string) string {
	return fmt.Sprintf("%s:%s:%s", realtimeKeyPrefix, topic, wallet)
}

// Subscribe implements stream.Source on redis pub/sub.
//
// Each message must be a JSON object {"type": "INSERT"|"UPDATE", "record": {...}}.
// Messages that do not decode, or carry another type, are skipped. The call
// returns once redis confirms the subscription.
func (c *client) Subscribe(ctx context.Context, topic stream.Topic, wallet string) (<-chan stream.Event, error) {
	channel := realtimeChannel(topic, wallet)

	sub := c.conn.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ctx = logger.Derive(ctx, "stream.channel", channel)
	events := make(chan stream.Event)
	go c.relay(ctx, sub, events)

	return events, nil
}

func (c *client) relay(ctx context.Context, sub *redis.PubSub, events chan<- stream.Event) {
	defer close(events)
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				chflow.Send(ctx, events, stream.Event{Err: stream.ErrStreamClosed})
				return
			}

			var event stream.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn(ctx, "skipping undecodable realtime message", "error", err)
				continue
			}
			if event.Type != stream.EventInsert && event.Type != stream.EventUpdate {
				logger.Debug(ctx, "skipping realtime message", "stream.event_type", event.Type)
				continue
			}

			if !chflow.Send(ctx, events, event) {
				return
			}
		}
	}
}

// PublishChange publishes a row change to the subscribers of topic and
// wallet. It is the producer side of Subscribe.
func (c *client) PublishChange(ctx context.Context, topic stream.Topic, wallet string, eventType stream.EventType, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(stream.Event{Type: eventType, Record: raw})
	if err != nil {
		return err
	}

	return c.conn.Publish(ctx, realtimeChannel(topic, wallet), payload).Err()
}

// Ensure the client satisfies the stream.Source interface at compile time.
var _ stream.Source = new(client)
