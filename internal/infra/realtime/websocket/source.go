// Package websocket implements stream.Source on a phoenix-style realtime
// server: one websocket per subscription, joined to a postgres_changes
// channel filtered by wallet.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/x/chflow"
	"github.com/gabapcia/walletsync/internal/stream"

	"github.com/gorilla/websocket"
)

const (
	DefaultHeartbeatInterval = 25 * time.Second
	DefaultSchema            = "public"

	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"

	writeTimeout = 5 * time.Second
)

var (
	// ErrJoinRejected is returned when the server refuses a channel join.
	ErrJoinRejected = errors.New("realtime join rejected")

	// ErrChannelClosed is reported when the server errors or closes a joined channel.
	ErrChannelClosed = errors.New("realtime channel closed by server")
)

// message is the envelope of every frame exchanged with the server.
type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

type reply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type change struct {
	Data struct {
		Type   stream.EventType `json:"type"`
		Record json.RawMessage  `json:"record"`
	} `json:"data"`
}

type changeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
	Filter string `json:"filter"`
}

type joinPayload struct {
	Config struct {
		PostgresChanges []changeFilter `json:"postgres_changes"`
	} `json:"config"`
}

type config struct {
	apiKey            string
	heartbeatInterval time.Duration
	schema            string
	dialer            *websocket.Dialer
}

type Option func(*config)

// WithAPIKey sets the key sent as the apikey query parameter.
func WithAPIKey(key string) Option {
	return func(c *config) {
		c.apiKey = key
	}
}

func WithHeartbeatInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.heartbeatInterval = d
		}
	}
}

// WithSchema sets the database schema the topics' tables live in.
func WithSchema(schema string) Option {
	return func(c *config) {
		if schema != "" {
			c.schema = schema
		}
	}
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *config) {
		if d != nil {
			c.dialer = d
		}
	}
}

type source struct {
	endpoint string
	cfg      config
}

var _ stream.Source = (*source)(nil)

// NewSource returns a Source dialing endpoint, a ws:// or wss:// URL.
func NewSource(endpoint string, opts ...Option) (*source, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported realtime scheme %q", u.Scheme)
	}

	cfg := config{
		heartbeatInterval: DefaultHeartbeatInterval,
		schema:            DefaultSchema,
		dialer:            websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.apiKey != "" {
		q := u.Query()
		q.Set("apikey", cfg.apiKey)
		u.RawQuery = q.Encode()
	}

	return &source{endpoint: u.String(), cfg: cfg}, nil
}

// filter returns the row filter of wallet.
func filter(wallet string) string {
	return "wallet_address=eq." + wallet
}

// Subscribe dials the server, joins the channel of topic filtered by wallet
// and waits for the join reply.
func (s *source) Subscribe(ctx context.Context, topic stream.Topic, wallet string) (<-chan stream.Event, error) {
	conn, _, err := s.cfg.dialer.DialContext(ctx, s.endpoint, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dial realtime server: %w", err)
	}

	sess := &session{
		conn:    conn,
		channel: fmt.Sprintf("realtime:%s:%s:%s", s.cfg.schema, topic, filter(wallet)),
	}

	// Unblocks the join read below when ctx ends first.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })

	if err := sess.join(s.cfg.schema, string(topic), wallet); err != nil {
		stop()
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	stop()

	ctx = logger.Derive(ctx, "stream.channel", sess.channel)
	events := make(chan stream.Event)

	go sess.heartbeat(ctx, s.cfg.heartbeatInterval)
	go sess.relay(ctx, events)

	return events, nil
}

type session struct {
	conn    *websocket.Conn
	channel string
	writeMu sync.Mutex
	ref     atomic.Uint64
}

func (s *session) write(topic, event string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	ref := strconv.FormatUint(s.ref.Add(1), 10)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ref, s.conn.WriteJSON(message{Topic: topic, Event: event, Payload: raw, Ref: ref})
}

func (s *session) join(schema, table, wallet string) error {
	var payload joinPayload
	payload.Config.PostgresChanges = []changeFilter{{
		Event:  "*",
		Schema: schema,
		Table:  table,
		Filter: filter(wallet),
	}}

	ref, err := s.write(s.channel, eventJoin, payload)
	if err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	for {
		var msg message
		if err := s.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read join reply: %w", err)
		}
		if msg.Event != eventReply || msg.Ref != ref {
			continue
		}

		var r reply
		if err := json.Unmarshal(msg.Payload, &r); err != nil {
			return fmt.Errorf("%w: %w", ErrJoinRejected, err)
		}
		if r.Status != "ok" {
			return fmt.Errorf("%w: %s %s", ErrJoinRejected, r.Status, r.Response)
		}
		return nil
	}
}

func (s *session) heartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.write("phoenix", eventHeartbeat, struct{}{}); err != nil {
				logger.Debug(ctx, "realtime heartbeat failed", "error", err)
				return
			}
		}
	}
}

// relay forwards row changes until ctx ends or the connection breaks.
func (s *session) relay(ctx context.Context, events chan<- stream.Event) {
	defer close(events)

	stop := context.AfterFunc(ctx, func() {
		_, _ = s.write(s.channel, eventLeave, struct{}{})
		_ = s.conn.Close()
	})
	defer stop()
	defer s.conn.Close()

	for {
		var msg message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				chflow.Send(ctx, events, stream.Event{Err: fmt.Errorf("%w: %w", stream.ErrStreamClosed, err)})
			}
			return
		}

		if msg.Topic != s.channel {
			continue
		}

		switch msg.Event {
		case eventError, eventClose:
			chflow.Send(ctx, events, stream.Event{Err: fmt.Errorf("%w: %s", ErrChannelClosed, msg.Event)})
			return
		case eventChanges:
			var c change
			if err := json.Unmarshal(msg.Payload, &c); err != nil {
				logger.Warn(ctx, "skipping undecodable realtime change", "error", err)
				continue
			}
			if c.Data.Type != stream.EventInsert && c.Data.Type != stream.EventUpdate {
				continue
			}
			if !chflow.Send(ctx, events, stream.Event{Type: c.Data.Type, Record: c.Data.Record}) {
				return
			}
		}
	}
}
