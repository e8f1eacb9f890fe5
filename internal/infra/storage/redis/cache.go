package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/walletsync/internal/cachestore"

	"github.com/redis/go-redis/v9"
)

const (
	// cacheKeyPrefix namespaces every presentation cache entry.
	cacheKeyPrefix = "walletsync:cache"

	// cacheMaxWriteAttempts bounds the optimistic transaction retries of a
	// single Write under contention.
	cacheMaxWriteAttempts = 10
)

var errWriteContention = errors.New("cache write kept conflicting")

// cacheKey builds the redis key of a cache entry.
//
// Format: "walletsync:cache:{key}"
func cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", cacheKeyPrefix, key)
}

// Read returns the raw value stored under key, or cachestore.ErrNotFound.
func (c *client) Read(ctx context.Context, key string) ([]byte, error) {
	val, err := c.conn.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cachestore.ErrNotFound
	}
	return val, err
}

// Write applies update to the value stored under key inside a WATCH/MULTI
// transaction, so a concurrent writer forces a retry on fresh data instead
// of being overwritten.
//
// Returns:
//   - nil when the value was written or update returned cachestore.ErrSkipWrite.
//   - the error returned by update, as is.
//   - errWriteContention when every attempt conflicted.
func (c *client) Write(ctx context.Context, key string, update cachestore.Updater) error {
	rkey := cacheKey(key)

	txf := func(tx *redis.Tx) error {
		old, err := tx.Get(ctx, rkey).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found, err = false, nil
		}
		if err != nil {
			return err
		}

		val, err := update(old, found)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rkey, val, c.cacheTTL)
			return nil
		})
		return err
	}

	for range cacheMaxWriteAttempts {
		err := c.conn.Watch(ctx, txf, rkey)
		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, cachestore.ErrSkipWrite):
			return nil
		default:
			return err
		}
	}

	return fmt.Errorf("%w: %s", errWriteContention, key)
}

// Invalidate deletes keys. Missing keys are ignored.
func (c *client) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	rkeys := make([]string, len(keys))
	for i, k := range keys {
		rkeys[i] = cacheKey(k)
	}

	return c.conn.Del(ctx, rkeys...).Err()
}

// Ensure the client satisfies the cachestore.Store interface at compile time.
var _ cachestore.Store = new(client)
