package receiver

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
)

const DefaultWindow = 1024

// Presenter shows an event to the user.
type Presenter func(ctx context.Context, evt event.Event, via ledger.Channel) error

// Option configures a Receiver.
type Option func(*Receiver)

// WithPresenter sets the presentation callback. The default does nothing.
func WithPresenter(p Presenter) Option {
	return func(r *Receiver) {
		if p != nil {
			r.present = p
		}
	}
}

// WithWindow sets how many event ids are remembered for deduplication.
func WithWindow(size int) Option {
	return func(r *Receiver) {
		if size > 0 {
			r.window = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}
