package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/walletsync/internal/config"
	"github.com/gabapcia/walletsync/internal/handlers/cli"
	"github.com/gabapcia/walletsync/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/walletsync/internal/infra/push/webhook"
	"github.com/gabapcia/walletsync/internal/infra/realtime/websocket"
	"github.com/gabapcia/walletsync/internal/infra/storage/postgres"
	"github.com/gabapcia/walletsync/internal/infra/storage/redis"
	"github.com/gabapcia/walletsync/internal/notify"
	"github.com/gabapcia/walletsync/internal/pkg/logger"
	"github.com/gabapcia/walletsync/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletsync/internal/pkg/telemetry"
	httpx "github.com/gabapcia/walletsync/internal/pkg/transport/http"
	"github.com/gabapcia/walletsync/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletsync/internal/stream"
	"github.com/gabapcia/walletsync/internal/subscription"
	"github.com/gabapcia/walletsync/internal/updatequeue"
	"github.com/gabapcia/walletsync/internal/walletstate"
	"github.com/gabapcia/walletsync/internal/walletsync"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Telemetry {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB,
		redis.WithCacheTTL(cfg.Redis.CacheTTL),
		redis.WithOutbox(cfg.Redis.OutboxStream, cfg.Redis.OutboxMaxLen),
	)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	pg, err := postgres.NewClient(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Postgres.Migrate {
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}

	rpcOpts := []jsonrpc.Option{
		jsonrpc.WithHTTPClient(httpx.NewClient(
			httpx.WithTimeout(cfg.RPC.Timeout),
			httpx.WithRetryMax(cfg.RPC.RetryMax),
			httpx.WithRetryWaitMin(cfg.RPC.RetryWaitMin),
			httpx.WithRetryWaitMax(cfg.RPC.RetryWaitMax),
		).StandardClient()),
	}
	if cfg.RPC.APIKey != "" {
		rpcOpts = append(rpcOpts, jsonrpc.WithHeader(cfg.RPC.APIKeyHeader, cfg.RPC.APIKey))
	}

	chain, err := ethereum.NewClient(jsonrpc.NewClient(cfg.RPC.Endpoint, rpcOpts...), ethereum.WithBlock(cfg.RPC.Block))
	if err != nil {
		return fmt.Errorf("init chain reader: %w", err)
	}

	source, err := newSource(cfg.Realtime, redisClient)
	if err != nil {
		return err
	}

	registry, err := walletstate.New(cfg.Sync.MaxTrackedWallets)
	if err != nil {
		return err
	}

	publisherOpts := []notify.Option{
		notify.WithSink(notify.LogSink{}),
		notify.WithSink(redisClient),
	}
	if cfg.Push.Enabled {
		pusher := webhook.NewPusher(cfg.Push.Endpoint, webhook.WithBearerToken(cfg.Push.Token))
		publisherOpts = append(publisherOpts, notify.WithPusher(pusher, notify.StaticPermission(true)))
	}

	queueOpts := []updatequeue.Option{updatequeue.WithMaxSize(cfg.Sync.QueueSize)}

	subscriptions := subscription.New(
		subscription.StreamFactory(source,
			stream.WithBaseDelay(cfg.Realtime.BaseDelay),
			stream.WithMaxDelay(cfg.Realtime.MaxDelay),
			stream.WithMaxAttempts(cfg.Realtime.MaxAttempts),
			stream.WithSubscribeTimeout(cfg.Realtime.SubscribeTimeout),
		),
		subscription.WithMaxSubscriptions(cfg.Realtime.MaxSubscriptions),
		subscription.WithQueueOptions(queueOpts...),
	)

	svc := walletsync.New(
		chain,
		pg,
		redisClient,
		registry,
		notify.NewDetector(registry, notify.WithLocalAccount(cfg.Sync.LocalAccount)),
		notify.NewPublisher(publisherOpts...),
		subscriptions,
		walletsync.WithRetry(retry.New(
			retry.WithAttempts(cfg.Sync.FetchAttempts),
			retry.WithDelay(cfg.Sync.FetchDelay),
		)),
		walletsync.WithPollInterval(cfg.Sync.PollInterval),
		walletsync.WithMaxCacheTransactions(cfg.Sync.MaxCacheTransactions),
		walletsync.WithTrackedModules(cfg.Sync.TrackedModules...),
		walletsync.WithPollQueueOptions(queueOpts...),
	)

	return cli.Run(ctx, svc)
}

func newSource(cfg config.Realtime, redisClient stream.Source) (stream.Source, error) {
	if cfg.Source != "websocket" {
		return redisClient, nil
	}

	return websocket.NewSource(cfg.Endpoint,
		websocket.WithAPIKey(cfg.APIKey),
		websocket.WithSchema(cfg.Schema),
		websocket.WithHeartbeatInterval(cfg.HeartbeatInterval),
	)
}
