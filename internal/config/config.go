// Package config loads the process settings from WALLETSYNC_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Prefix of every environment variable read by Load.
const Prefix = "WALLETSYNC"

type Redis struct {
	Addr     string `default:"localhost:6379"`
	Username string
	Password string
	DB       int           `default:"0"`
	CacheTTL time.Duration `split_words:"true" default:"24h"`

	OutboxStream string `split_words:"true" default:"walletsync:notifications"`
	OutboxMaxLen int64  `split_words:"true" default:"10000"`
}

type Postgres struct {
	DSN     string `required:"true"`
	Migrate bool   `default:"false"`
}

type RPC struct {
	Endpoint     string        `required:"true" validate:"url"`
	APIKeyHeader string        `split_words:"true" default:"X-Api-Key"`
	APIKey       string        `envconfig:"API_KEY"`
	Block        string        `default:"latest"`
	Timeout      time.Duration `default:"5s"`
	RetryMax     int           `split_words:"true" default:"2"`
	RetryWaitMin time.Duration `split_words:"true" default:"1s"`
	RetryWaitMax time.Duration `split_words:"true" default:"5s"`
}

type Realtime struct {
	// Source is "redis" or "websocket".
	Source            string        `default:"redis" validate:"oneof=redis websocket"`
	Endpoint          string        `validate:"required_if=Source websocket"`
	APIKey            string        `envconfig:"API_KEY"`
	Schema            string        `default:"public"`
	HeartbeatInterval time.Duration `split_words:"true" default:"25s"`

	MaxSubscriptions int           `split_words:"true" default:"10" validate:"gt=0"`
	BaseDelay        time.Duration `split_words:"true" default:"1s"`
	MaxDelay         time.Duration `split_words:"true" default:"30s"`
	MaxAttempts      int           `split_words:"true" default:"5" validate:"gt=0"`
	SubscribeTimeout time.Duration `split_words:"true" default:"10s"`
}

type Sync struct {
	LocalAccount         string        `split_words:"true" validate:"omitempty,eth_addr"`
	TrackedModules       []string      `split_words:"true" validate:"dive,eth_addr"`
	PollInterval         time.Duration `split_words:"true" default:"30s"`
	QueueSize            int           `split_words:"true" default:"100" validate:"gt=0"`
	MaxCacheTransactions int           `split_words:"true" default:"100" validate:"gt=0"`
	MaxTrackedWallets    int           `split_words:"true" default:"50" validate:"gt=0"`
	FetchAttempts        uint          `split_words:"true" default:"3" validate:"gt=0"`
	FetchDelay           time.Duration `split_words:"true" default:"200ms"`
}

type Push struct {
	Enabled  bool   `default:"false"`
	Endpoint string `validate:"required_if=Enabled true,omitempty,url"`
	Token    string
}

type Config struct {
	ServiceName string `split_words:"true" default:"walletsync"`
	LogLevel    string `split_words:"true" default:"info"`
	Telemetry   bool   `default:"false"`

	Redis    Redis
	Postgres Postgres
	RPC      RPC
	Realtime Realtime
	Sync     Sync
	Push     Push
}

// Load reads the configuration from the environment and validates it.
// Nested fields are named after their section, e.g. WALLETSYNC_REDIS_ADDR or
// WALLETSYNC_SYNC_POLL_INTERVAL.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
