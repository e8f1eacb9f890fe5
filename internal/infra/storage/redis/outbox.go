package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gabapcia/walletsync/internal/notify"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// outboxDefaultStream is the stream notifications are appended to unless
// WithOutbox says otherwise.
const outboxDefaultStream = "walletsync:notifications"

// Enqueue appends n to the notification stream. Each entry carries a time
// ordered id, the dedup key and the JSON encoded notification, so consumers
// can drop duplicates across process restarts.
func (c *client) Enqueue(ctx context.Context, n notify.Notification) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	return c.conn.XAdd(ctx, &redis.XAddArgs{
		Stream: c.outboxStream,
		MaxLen: c.outboxMaxLen,
		Approx: true,
		Values: map[string]any{
			"id":      id.String(),
			"kind":    string(n.Kind),
			"wallet":  n.Wallet,
			"key":     n.Key,
			"payload": payload,
		},
	}).Err()
}

// Ensure the client satisfies the notify.Sink interface at compile time.
var _ notify.Sink = new(client)
