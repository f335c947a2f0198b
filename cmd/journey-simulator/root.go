package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/jcmexdev/ticket-journeys/internal/config"
	"github.com/jcmexdev/ticket-journeys/internal/journey"
	"github.com/jcmexdev/ticket-journeys/internal/pkg/random"
	"github.com/jcmexdev/ticket-journeys/internal/pkg/telemetry"
	"github.com/jcmexdev/ticket-journeys/internal/recordlog/sqlite"
	"github.com/jcmexdev/ticket-journeys/internal/sink"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "journey-simulator",
		Short:         "Generate correlated microservice logs for simulated ticket-buying users.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.Flags().Int("journeys", 0, "Number of users to simulate. Overrides JOURNEYSIM_JOURNEYS.")
	cmd.Flags().Int("concurrency", 0, "Journeys simulated in parallel. Overrides JOURNEYSIM_CONCURRENCY.")
	cmd.Flags().Int64("seed", 0, "Seed for a reproducible run, any value including 0. Random when unset. Overrides JOURNEYSIM_SEED.")
	cmd.Flags().StringSlice("sinks", nil, "Destinations: file, stdout, redis, sqlite. Overrides JOURNEYSIM_SINKS.")
	cmd.Flags().Duration("flush-delay", 0, "Wait before closing sinks. Overrides JOURNEYSIM_FLUSH_DELAY.")
	cmd.Flags().String("log-level", "", "Process log level. Overrides JOURNEYSIM_LOG_LEVEL.")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	level, err := telemetry.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", cfg.LogLevel, err)
		return err
	}
	telemetry.InitLogger(os.Stderr, level)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.OTelServiceName, cfg.OTelEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	seed, err := pickSeed(cfg.Seed)
	if err != nil {
		slog.Error("failed to pick a seed", "error", err)
		return err
	}
	slog.Info("starting simulation", "journeys", cfg.Journeys, "seed", seed, "sinks", cfg.Sinks)

	reg := prometheus.NewRegistry()
	metrics, err := journey.NewMetrics(reg)
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		return err
	}

	destination, name, err := openSinks(ctx, cfg)
	if err != nil {
		slog.Error("failed to open sinks", "error", err)
		return err
	}

	driver := journey.NewDriver(journey.DriverConfig{
		Sink:        sink.NewAsync(destination, cfg.BufferSize),
		SinkName:    name,
		Journeys:    cfg.Journeys,
		Concurrency: cfg.Concurrency,
		Seed:        seed,
		FlushDelay:  cfg.FlushDelay,
		Policy:      cfg.Policy.Journey(),
		Tracer:      otel.Tracer("journey-simulator"),
		Metrics:     metrics,
		Out:         os.Stdout,
	})
	if _, err := driver.Run(ctx); err != nil {
		slog.Error("simulation failed", "error", err)
		return err
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			slog.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
			return err
		}
	}
	return nil
}

// pickSeed returns the configured seed, or a random one when none is set.
func pickSeed(configured *int64) (int64, error) {
	if configured != nil {
		return *configured, nil
	}
	return random.NewSeed()
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("journeys") {
		if cfg.Journeys, err = flags.GetInt("journeys"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("seed") {
		seed, err := flags.GetInt64("seed")
		if err != nil {
			return err
		}
		cfg.Seed = &seed
	}
	if flags.Changed("sinks") {
		if cfg.Sinks, err = flags.GetStringSlice("sinks"); err != nil {
			return err
		}
	}
	if flags.Changed("flush-delay") {
		if cfg.FlushDelay, err = flags.GetDuration("flush-delay"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	return nil
}

// openSinks builds the configured destinations. The returned name is used in
// the completion notice.
func openSinks(ctx context.Context, cfg config.Config) (journey.Sink, string, error) {
	var sinks sink.Multi
	fail := func(err error) (journey.Sink, string, error) {
		_ = sinks.Close(ctx)
		return nil, "", err
	}

	for _, s := range cfg.Sinks {
		switch s {
		case "file":
			if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0o755); err != nil {
				return fail(fmt.Errorf("create log directory: %w", err))
			}
			sinks = append(sinks, sink.NewFile(cfg.File.Path, sink.Rotation{
				MaxSizeMB:  cfg.File.MaxSizeMB,
				MaxBackups: cfg.File.MaxBackups,
				MaxAgeDays: cfg.File.MaxAgeDays,
				Compress:   cfg.File.Compress,
			}))
		case "stdout":
			sinks = append(sinks, sink.NewJSONLines(os.Stdout))
		case "redis":
			r := sink.NewRedis(cfg.Redis.Addr, cfg.Redis.Prefix)
			if err := r.Ping(ctx); err != nil {
				_ = r.Close(ctx)
				return fail(err)
			}
			sinks = append(sinks, r)
		case "sqlite":
			if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
				return fail(fmt.Errorf("create database directory: %w", err))
			}
			repo, err := sqlite.Open(cfg.SQLite.Path)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, repo)
		}
	}

	name := cfg.Sinks[0]
	if len(cfg.Sinks) > 1 {
		name = fmt.Sprint(cfg.Sinks)
	}
	if len(sinks) == 1 {
		return sinks[0], name, nil
	}
	return sinks, name, nil
}
