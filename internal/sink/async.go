package sink

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink: closed")

type entry struct {
	ctx context.Context
	r   journey.Record
}

// Async hands records to a background goroutine so emitting never waits on
// the destination. Close drains the buffer before closing the destination.
type Async struct {
	next  journey.Sink
	queue chan entry
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
	err    error
}

// NewAsync starts the delivery goroutine. size is the buffer length.
func NewAsync(next journey.Sink, size int) *Async {
	a := &Async{
		next:  next,
		queue: make(chan entry, size),
		done:  make(chan struct{}),
	}
	go a.deliver()
	return a
}

func (a *Async) deliver() {
	defer close(a.done)
	for e := range a.queue {
		if err := a.next.Write(e.ctx, e.r); err != nil && a.err == nil {
			slog.ErrorContext(e.ctx, "record delivery failed", "error", err)
			a.err = err
		}
	}
}

// Write enqueues r. It blocks only while the buffer is full.
func (a *Async) Write(ctx context.Context, r journey.Record) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- entry{ctx: context.WithoutCancel(ctx), r: r}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records, waits for every queued record to be
// delivered and closes the destination. The first delivery error, if any, is
// returned.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return errors.Join(a.err, a.next.Close(ctx))
}
