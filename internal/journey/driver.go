package journey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultJourneys   = 300
	DefaultFlushDelay = time.Second
)

// DriverConfig configures a Driver. Sink is required.
type DriverConfig struct {
	Sink Sink
	// SinkName is used in the completion notice.
	SinkName    string
	Journeys    int
	Concurrency int
	Seed        int64
	FlushDelay  time.Duration
	Policy      Policy
	Now         func() time.Time
	Tracer      trace.Tracer
	Metrics     *Metrics
	// Out receives complaint and completion notices. Defaults to io.Discard.
	Out io.Writer
}

// Report summarises a run.
type Report struct {
	Journeys   int
	Completed  int
	Failed     int
	Abandoned  int
	Complaints []string
}

// Driver simulates many independent users.
type Driver struct {
	cfg DriverConfig
}

func NewDriver(cfg DriverConfig) *Driver {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.SinkName == "" {
		cfg.SinkName = "sink"
	}
	return &Driver{cfg: cfg}
}

// Run plays every journey, waits the flush delay, closes the sink and prints
// the completion notice. Simulated failures never make Run fail; only sink
// errors do.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	// Seeds are drawn up front so each journey's randomness does not depend on
	// scheduling.
	master := rand.New(rand.NewSource(d.cfg.Seed))
	seeds := make([]int64, d.cfg.Journeys)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	outcomes := make([]Outcome, len(seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Concurrency)
	for i, seed := range seeds {
		g.Go(func() error {
			out, err := d.journey(seed).Run(gctx)
			if err != nil {
				return fmt.Errorf("journey %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	runErr := g.Wait()

	report := Report{Journeys: len(seeds)}
	for _, out := range outcomes {
		d.record(&report, out)
	}

	if runErr == nil {
		select {
		case <-time.After(d.cfg.FlushDelay):
		case <-ctx.Done():
		}
	}
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.cfg.Sink.Close(closeCtx); err != nil {
		return report, errors.Join(runErr, fmt.Errorf("journey: close sink: %w", err))
	}
	if runErr != nil {
		return report, runErr
	}

	fmt.Fprintf(d.cfg.Out, "Sent logs to %s\n", d.cfg.SinkName)
	slog.Info("simulation finished",
		"journeys", report.Journeys,
		"completed", report.Completed,
		"failed", report.Failed,
		"abandoned", report.Abandoned,
		"complaints", len(report.Complaints),
	)
	return report, nil
}

func (d *Driver) journey(seed int64) *Journey {
	cfg := Config{
		Sink:   d.cfg.Sink,
		Rand:   rand.New(rand.NewSource(seed)),
		Policy: d.cfg.Policy,
		Now:    d.cfg.Now,
		Tracer: d.cfg.Tracer,
	}
	if d.cfg.Metrics != nil {
		cfg.Records = d.cfg.Metrics.Records
	}
	return New(cfg)
}

func (d *Driver) record(report *Report, out Outcome) {
	switch out.Status {
	case StatusCompleted:
		report.Completed++
	case StatusAbandoned:
		report.Abandoned++
	case StatusComplained:
		var complaint *CustomerComplaint
		if errors.As(out.Err, &complaint) {
			report.Complaints = append(report.Complaints, complaint.UserID)
			fmt.Fprintln(d.cfg.Out, complaint.Notice())
		}
	case StatusFailed:
		report.Failed++
	default:
		// Journey never ran, the group was cancelled before reaching it.
		return
	}
	if d.cfg.Metrics != nil {
		d.cfg.Metrics.Journeys.WithLabelValues(string(out.Status)).Inc()
	}
}
