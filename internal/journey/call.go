package journey

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ticket-journeys/internal/pkg/telemetry"
)

// call is one simulated request to one service. It owns the correlation ID,
// the span and the stage's current logical timestamp. Sink errors are sticky:
// the first one is kept and returned by finish.
type call struct {
	ctx     context.Context
	span    trace.Span
	emitter *Emitter
	id      string
	service string
	ts      time.Time
	sinkErr error
}

func (j *Journey) begin(ctx context.Context, service, operation string, ts time.Time) *call {
	id := newID(j.rng)
	ctx = telemetry.WithCorrelationID(ctx, id)
	ctx, span := j.tracer.Start(ctx, service+"."+operation,
		trace.WithTimestamp(ts),
		trace.WithAttributes(
			attribute.String("service.name", service),
			attribute.String("correlation_id", id),
		))
	return &call{ctx: ctx, span: span, emitter: j.emitter, id: id, service: service, ts: ts}
}

func (c *call) info(f Fields) { c.emit(LevelInfo, f) }

func (c *call) warn(f Fields) { c.emit(LevelWarn, f) }

func (c *call) error(f Fields) { c.emit(LevelError, f) }

func (c *call) emit(level Level, f Fields) {
	if c.sinkErr != nil {
		return
	}
	if f.Timestamp.IsZero() {
		f.Timestamp = c.ts
	}
	c.sinkErr = c.emitter.Emit(c.ctx, c.id, level, c.service, f)
}

// finish ends the span at the call's logical timestamp. A sink error takes
// precedence over the simulated outcome.
func (c *call) finish(err error) error {
	if c.sinkErr != nil {
		err = c.sinkErr
	}
	if err != nil {
		c.span.RecordError(err, trace.WithTimestamp(c.ts))
		c.span.SetStatus(codes.Error, err.Error())
	}
	c.span.End(trace.WithTimestamp(c.ts))
	return err
}

func newID(rng Source) string {
	return uuid.Must(uuid.NewRandomFromReader(rng)).String()
}
