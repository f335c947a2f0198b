// Package config loads simulator settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// Config is the full simulator configuration. Every field can be set from the
// environment; the command line overrides the common ones.
type Config struct {
	Journeys    int `env:"JOURNEYSIM_JOURNEYS" envDefault:"300"`
	Concurrency int `env:"JOURNEYSIM_CONCURRENCY" envDefault:"1"`
	// Seed is nil when unset; the run then picks one at random.
	Seed       *int64        `env:"JOURNEYSIM_SEED"`
	FlushDelay time.Duration `env:"JOURNEYSIM_FLUSH_DELAY" envDefault:"1s"`
	LogLevel   string        `env:"JOURNEYSIM_LOG_LEVEL" envDefault:"info"`

	// Sinks lists destinations: file, stdout, redis, sqlite.
	Sinks      []string `env:"JOURNEYSIM_SINKS" envDefault:"file" envSeparator:","`
	BufferSize int      `env:"JOURNEYSIM_BUFFER_SIZE" envDefault:"1024"`

	File   FileConfig   `envPrefix:"JOURNEYSIM_FILE_"`
	Redis  RedisConfig  `envPrefix:"JOURNEYSIM_REDIS_"`
	SQLite SQLiteConfig `envPrefix:"JOURNEYSIM_SQLITE_"`

	// MetricsFile, when set, receives the run's counters in Prometheus text
	// format for a node_exporter textfile collector.
	MetricsFile string `env:"JOURNEYSIM_METRICS_FILE"`

	OTelEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"journey-simulator"`

	Policy PolicyConfig `envPrefix:"JOURNEYSIM_POLICY_"`
}

type FileConfig struct {
	Path       string `env:"PATH" envDefault:"microservice-logs/debugging.log"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"7"`
	Compress   bool   `env:"COMPRESS" envDefault:"false"`
}

type RedisConfig struct {
	Addr   string `env:"ADDR" envDefault:"localhost:6379"`
	Prefix string `env:"PREFIX" envDefault:"journeysim"`
}

type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"microservice-logs/records.db"`
}

// PolicyConfig mirrors journey.Policy.
type PolicyConfig struct {
	LoginFailure        float64       `env:"LOGIN_FAILURE" envDefault:"0.02"`
	SearchFailure       float64       `env:"SEARCH_FAILURE" envDefault:"0.01"`
	EventFailure        float64       `env:"EVENT_FAILURE" envDefault:"0.01"`
	TicketsUnavailable  float64       `env:"TICKETS_UNAVAILABLE" envDefault:"0.2"`
	HoldTimeout         float64       `env:"HOLD_TIMEOUT" envDefault:"0.3"`
	OrderFailure        float64       `env:"ORDER_FAILURE" envDefault:"0.03"`
	PaymentFailure      float64       `env:"PAYMENT_FAILURE" envDefault:"0.03"`
	NotificationFailure float64       `env:"NOTIFICATION_FAILURE" envDefault:"0.03"`
	NetworkDelay        time.Duration `env:"NETWORK_DELAY" envDefault:"1s"`
	QueueDelay          time.Duration `env:"QUEUE_DELAY" envDefault:"15s"`
	TicketTimeout       time.Duration `env:"TICKET_TIMEOUT" envDefault:"10s"`
	FrontEndActionDelay time.Duration `env:"FRONT_END_ACTION_DELAY" envDefault:"25s"`
}

// Journey converts the configured policy.
func (p PolicyConfig) Journey() journey.Policy {
	return journey.Policy{
		LoginFailure:        p.LoginFailure,
		SearchFailure:       p.SearchFailure,
		EventFailure:        p.EventFailure,
		TicketsUnavailable:  p.TicketsUnavailable,
		HoldTimeout:         p.HoldTimeout,
		OrderFailure:        p.OrderFailure,
		PaymentFailure:      p.PaymentFailure,
		NotificationFailure: p.NotificationFailure,
		NetworkDelay:        p.NetworkDelay,
		QueueDelay:          p.QueueDelay,
		TicketTimeout:       p.TicketTimeout,
		FrontEndActionDelay: p.FrontEndActionDelay,
	}
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks values the command line may have changed.
func (c Config) Validate() error {
	if c.Journeys < 0 {
		return fmt.Errorf("config: journeys must not be negative, got %d", c.Journeys)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("config: concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.FlushDelay < 0 {
		return fmt.Errorf("config: flush delay must not be negative, got %v", c.FlushDelay)
	}
	if len(c.Sinks) == 0 {
		return fmt.Errorf("config: at least one sink is required")
	}
	for _, s := range c.Sinks {
		switch s {
		case "file", "stdout", "redis", "sqlite":
		default:
			return fmt.Errorf("config: unknown sink %q", s)
		}
	}
	return c.Policy.Journey().Validate()
}
