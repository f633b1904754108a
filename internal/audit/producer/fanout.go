package producer

import (
	"context"
	"errors"

	"assetbase/backend/internal/audit/domain"
)

// Fanout emits each event to every underlying producer. Nil producers are
// skipped, so optional sinks can be passed unconditionally.
type Fanout []Producer

// NewFanout returns a Producer over the non-nil entries of prods.
// Returns nil when every entry is nil, which disables fan-out entirely.
func NewFanout(prods ...Producer) Producer {
	var out Fanout
	for _, p := range prods {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Emit sends the entry to every producer and returns the joined errors.
func (f Fanout) Emit(ctx context.Context, entry *domain.AuditLog) error {
	var errs []error
	for _, p := range f {
		if err := p.Emit(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every producer and returns the joined errors.
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
