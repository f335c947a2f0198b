package journey

import (
	"context"
	"math"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink receives finished records. Implementations must accept concurrent
// writes; Close must not return until every accepted record is delivered.
type Sink interface {
	Write(ctx context.Context, r Record) error
	Close(ctx context.Context) error
}

// Emitter turns stage fields into records and hands them to a Sink.
// An Emitter is bound to one journey's random source and is not safe for
// concurrent use.
type Emitter struct {
	sink    Sink
	rng     Source
	records *prometheus.CounterVec
}

// NewEmitter creates an emitter. records may be nil.
func NewEmitter(sink Sink, rng Source, records *prometheus.CounterVec) *Emitter {
	return &Emitter{sink: sink, rng: rng, records: records}
}

// Emit builds a record and writes it to the sink.
func (e *Emitter) Emit(ctx context.Context, correlationID string, level Level, service string, f Fields) error {
	r := Record{
		Level:         level,
		Service:       service,
		CorrelationID: correlationID,
		Timestamp:     f.Timestamp.UTC().Format(TimestampLayout),
		At:            f.Timestamp,
		Message:       f.Message,
		Method:        f.Method,
		URL:           f.URL,
		Status:        f.Status,
		Body:          f.Body,
		UserID:        f.UserID,
		EventID:       f.EventID,
		OrderID:       f.OrderID,
		Amount:        f.Amount,
		Category:      f.Category,
		NumTickets:    f.NumTickets,
	}
	if f.Method != "" {
		rt := round2(e.rng.Float64() * 1000)
		r.ResponseTime = &rt
	}
	if f.Err != nil {
		r.Message = f.Err.Error()
		r.StackTrace = stackTrace(f.Err)
	}
	if err := e.sink.Write(ctx, r); err != nil {
		return err
	}
	if e.records != nil {
		e.records.WithLabelValues(service, string(level)).Inc()
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
