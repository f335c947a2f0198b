package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.Journeys)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, time.Second, cfg.FlushDelay)
	assert.Equal(t, []string{"file"}, cfg.Sinks)
	assert.Equal(t, "microservice-logs/debugging.log", cfg.File.Path)
	assert.Equal(t, "journeysim", cfg.Redis.Prefix)
	assert.Equal(t, journey.DefaultPolicy(), cfg.Policy.Journey())
	assert.Nil(t, cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestLoadZeroSeed(t *testing.T) {
	t.Setenv("JOURNEYSIM_SEED", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, int64(0), *cfg.Seed)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JOURNEYSIM_JOURNEYS", "10")
	t.Setenv("JOURNEYSIM_SINKS", "stdout,redis")
	t.Setenv("JOURNEYSIM_REDIS_ADDR", "cache:6379")
	t.Setenv("JOURNEYSIM_POLICY_PAYMENT_FAILURE", "0.5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Journeys)
	assert.Equal(t, []string{"stdout", "redis"}, cfg.Sinks)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 0.5, cfg.Policy.PaymentFailure)
	assert.Equal(t, "http://collector:4317", cfg.OTelEndpoint)
}

func TestLoadError(t *testing.T) {
	t.Setenv("JOURNEYSIM_JOURNEYS", "many")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)

	tests := map[string]func(*Config){
		"negative journeys": func(c *Config) { c.Journeys = -1 },
		"zero concurrency":  func(c *Config) { c.Concurrency = 0 },
		"no sinks":          func(c *Config) { c.Sinks = nil },
		"unknown sink":      func(c *Config) { c.Sinks = []string{"kafka"} },
		"bad probability":   func(c *Config) { c.Policy.LoginFailure = 2 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := base
			cfg.Sinks = append([]string(nil), base.Sinks...)
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
