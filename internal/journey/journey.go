package journey

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Categories a user may search for.
var Categories = []string{"music", "sports", "theater", "conference"}

// Status is how a journey ended.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusComplained Status = "complained"
	// StatusAbandoned means the search came back empty and the user left.
	StatusAbandoned Status = "abandoned"
)

// Outcome is the result of one journey. Err holds the simulated failure for
// failed and complained journeys.
type Outcome struct {
	Status Status
	UserID string
	State  State
	Err    error
}

// Config wires a Journey. Sink and Rand are required.
type Config struct {
	Sink   Sink
	Rand   Source
	Policy Policy
	// Now is read once to pick the start of the journey. Defaults to time.Now.
	Now     func() time.Time
	Tracer  trace.Tracer
	Records *prometheus.CounterVec
}

// Journey drives one simulated user through the service chain, the way the
// front end would.
type Journey struct {
	rng     Source
	policy  Policy
	now     func() time.Time
	tracer  trace.Tracer
	emitter *Emitter
}

func New(cfg Config) *Journey {
	j := &Journey{
		rng:     cfg.Rand,
		policy:  cfg.Policy,
		now:     cfg.Now,
		tracer:  cfg.Tracer,
		emitter: NewEmitter(cfg.Sink, cfg.Rand, cfg.Records),
	}
	if j.now == nil {
		j.now = time.Now
	}
	if j.tracer == nil {
		j.tracer = otel.Tracer("github.com/jcmexdev/ticket-journeys/internal/journey")
	}
	return j
}

// Run plays the journey to completion or to its first failure. The returned
// error is only set when the sink failed; simulated failures are reported in
// the Outcome.
func (j *Journey) Run(ctx context.Context) (Outcome, error) {
	offset := time.Duration((5 + j.rng.Float64()) * float64(j.policy.FrontEndActionDelay))
	ts := j.now().Add(-offset)

	ctx, span := j.tracer.Start(ctx, "front-end.journey", trace.WithTimestamp(ts))
	out, err := j.run(ctx, ts)
	span.End()
	if err != nil && !IsSimulated(err) {
		return out, err
	}

	var complaint *CustomerComplaint
	switch {
	case err == nil:
	case errors.As(err, &complaint):
		out.Status = StatusComplained
		out.Err = err
		slog.DebugContext(ctx, "journey ended with complaint", "user_id", complaint.UserID, "order_id", complaint.OrderID)
	default:
		out.Status = StatusFailed
		out.Err = err
		slog.DebugContext(ctx, "journey ended", "user_id", out.UserID, "reason", err.Error())
	}
	return out, nil
}

func (j *Journey) run(ctx context.Context, ts time.Time) (Outcome, error) {
	s, err := j.logIn(ctx, ts)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{UserID: s.UserID, State: s}

	ts = Advance(ts, j.policy.FrontEndActionDelay, j.rng)
	category := Categories[j.rng.Intn(len(Categories))]
	eventIDs, err := j.searchEvents(ctx, ts, category)
	if err != nil {
		return out, err
	}

	ts = Advance(ts, j.policy.FrontEndActionDelay, j.rng)
	for _, id := range eventIDs {
		if err := j.getEvent(ctx, ts, id); err != nil {
			return out, err
		}
	}
	if len(eventIDs) == 0 {
		out.Status = StatusAbandoned
		return out, nil
	}

	s.EventID = eventIDs[j.rng.Intn(len(eventIDs))]
	s.NumTickets = j.rng.Intn(5) + 1

	ts = Advance(ts, j.policy.FrontEndActionDelay, j.rng)
	s, err = j.purchaseTickets(ctx, ts, s)
	out.State = s
	if err != nil {
		return out, err
	}
	out.Status = StatusCompleted
	return out, nil
}
