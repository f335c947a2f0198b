// Package recordlog keeps an append-only, queryable copy of emitted records.
//
// Each entry carries the OpenTelemetry trace and span that were active when
// the record was emitted, so a record can be joined with the trace of the
// simulated call that produced it.
package recordlog

import (
	"context"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// Entry is a single row in the records table.
type Entry struct {
	Record journey.Record

	// TraceID is the W3C trace ID of the journey that emitted the record.
	TraceID string

	// SpanID is the span of the simulated service call.
	SpanID string
}

// Repository persists entries. Save appends; there are no updates.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}
