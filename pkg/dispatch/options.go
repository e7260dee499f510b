package dispatch

import (
	"log/slog"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
)

const DefaultWorkers = 16

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDeliverer registers the deliverer for a channel.
func WithDeliverer(ch ledger.Channel, d Deliverer) Option {
	return func(disp *Dispatcher) {
		if d != nil {
			disp.deliverers[ch] = d
		}
	}
}

// WithWorkers bounds the number of recipients processed concurrently.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}
