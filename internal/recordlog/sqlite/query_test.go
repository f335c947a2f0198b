package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
	"github.com/jcmexdev/ticket-journeys/internal/recordlog"
)

// byCorrelationID returns every entry for a correlation ID in emission order.
func (r *Repository) byCorrelationID(ctx context.Context, correlationID string) ([]recordlog.Entry, error) {
	const q = `
		SELECT payload, trace_id, span_id
		FROM   records
		WHERE  correlation_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, correlationID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %q: %w", correlationID, err)
	}
	defer rows.Close()

	var entries []recordlog.Entry
	for rows.Next() {
		var payload string
		var e recordlog.Entry
		if err := rows.Scan(&payload, &e.TraceID, &e.SpanID); err != nil {
			return nil, fmt.Errorf("sqlite: scan %q: %w", correlationID, err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Record); err != nil {
			return nil, fmt.Errorf("sqlite: decode %q: %w", correlationID, err)
		}
		if e.Record.At, err = parseTimestamp(e.Record.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate %q: %w", correlationID, err)
	}
	return entries, nil
}

// count returns the number of stored records at the given level, or of all
// records when level is empty.
func (r *Repository) count(ctx context.Context, level journey.Level) (int, error) {
	q := `SELECT COUNT(*) FROM records`
	var args []any
	if level != "" {
		q += ` WHERE level = ?`
		args = append(args, string(level))
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count records: %w", err)
	}
	return n, nil
}

// parseTimestamp parses the record timestamps stored as TEXT.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(journey.TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
