package recordlog

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty
// when there is no valid span, which is the case when tracing is disabled.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry for r with the trace info from ctx.
func NewEntry(ctx context.Context, r journey.Record) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		Record:  r,
		TraceID: ti.TraceID,
		SpanID:  ti.SpanID,
	}
}
