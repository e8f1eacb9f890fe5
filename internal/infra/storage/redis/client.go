// Package redis holds the redis adapters of walletsync: the presentation
// cache, the pub/sub realtime source and the notification outbox.
package redis

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	// DefaultCacheTTL bounds how long an untouched cache entry survives.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultOutboxMaxLen caps the notification stream, approximately.
	DefaultOutboxMaxLen = 10_000
)

type client struct {
	conn *redis.Client

	cacheTTL     time.Duration
	outboxStream string
	outboxMaxLen int64
}

func (c *client) Close() error {
	return c.conn.Close()
}

type Option func(*client)

// WithCacheTTL sets the expiration of cache entries. Zero disables it.
func WithCacheTTL(d time.Duration) Option {
	return func(c *client) {
		if d >= 0 {
			c.cacheTTL = d
		}
	}
}

// WithOutbox sets the stream notifications are appended to and its
// approximate max length.
func WithOutbox(stream string, maxLen int64) Option {
	return func(c *client) {
		if stream != "" {
			c.outboxStream = stream
		}
		if maxLen > 0 {
			c.outboxMaxLen = maxLen
		}
	}
}

func newClient(conn *redis.Client, opts ...Option) *client {
	c := &client{
		conn:         conn,
		cacheTTL:     DefaultCacheTTL,
		outboxStream: outboxDefaultStream,
		outboxMaxLen: DefaultOutboxMaxLen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return newClient(conn, opts...), nil
}
