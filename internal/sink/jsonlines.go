package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// JSONLines writes one JSON document per record. Each record is written with
// a single Write call under a lock so lines never interleave.
type JSONLines struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewJSONLines writes to w. w is not closed by Close.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

// Rotation configures log file rotation. Zero values use lumberjack defaults.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFile appends to the file at path, rotating it according to r.
func NewFile(path string, r Rotation) *JSONLines {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    r.MaxSizeMB,
		MaxBackups: r.MaxBackups,
		MaxAge:     r.MaxAgeDays,
		Compress:   r.Compress,
	}
	return &JSONLines{w: lj, closer: lj}
}

func (s *JSONLines) Write(_ context.Context, r journey.Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("sink: marshal record: %w", err)
	}
	b = append(b, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("sink: write record: %w", err)
	}
	return nil
}

func (s *JSONLines) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
