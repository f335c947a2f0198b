package sink

import (
	"context"
	"errors"

	"github.com/jcmexdev/ticket-journeys/internal/journey"
)

// Multi writes every record to each of its sinks in order.
type Multi []journey.Sink

func (m Multi) Write(ctx context.Context, r journey.Record) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close(ctx))
	}
	return errors.Join(errs...)
}
