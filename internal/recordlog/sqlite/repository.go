// Package sqlite provides a SQLite-backed implementation of
// recordlog.Repository. The repository is also a journey.Sink, so it can sit
// directly at the end of a simulation.
//
// WAL mode is enabled on Open so readers never block the writer.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
	"github.com/jcmexdev/ticket-journeys/internal/recordlog"

	// Pure-Go driver, no CGO.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    correlation_id  TEXT    NOT NULL,
    level           TEXT    NOT NULL,
    service         TEXT    NOT NULL,
    message         TEXT    NOT NULL DEFAULT '',
    -- Simulated time of the record, ISO-8601 with milliseconds.
    ts              TEXT    NOT NULL,
    -- Full record as emitted.
    payload         TEXT    NOT NULL,
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_records_correlation_id ON records(correlation_id, id);
CREATE INDEX IF NOT EXISTS idx_records_trace_id ON records(trace_id);
`

// Repository is the SQLite implementation of recordlog.Repository.
type Repository struct {
	db *sql.DB
}

var (
	_ recordlog.Repository = (*Repository)(nil)
	_ journey.Sink         = (*Repository)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/records.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Save inserts a new entry. It is safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *recordlog.Entry) error {
	const q = `
		INSERT INTO records
			(correlation_id, level, service, message, ts, payload, trace_id, span_id)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	payload, err := json.Marshal(entry.Record)
	if err != nil {
		return fmt.Errorf("sqlite: marshal record: %w", err)
	}
	rec := entry.Record
	_, err = r.db.ExecContext(ctx, q,
		rec.CorrelationID,
		string(rec.Level),
		rec.Service,
		rec.Message,
		rec.Timestamp,
		string(payload),
		entry.TraceID,
		entry.SpanID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save record for %q: %w", rec.CorrelationID, err)
	}
	return nil
}

// Write stores r with the trace info found in ctx.
func (r *Repository) Write(ctx context.Context, rec journey.Record) error {
	return r.Save(ctx, recordlog.NewEntry(ctx, rec))
}

// Close releases the database connection.
func (r *Repository) Close(context.Context) error {
	return r.db.Close()
}
