package live

import "log/slog"

const DefaultBufferSize = 16

// Option configures a Table.
type Option func(*Table)

// WithBufferSize sets the outbound buffer of new connections.
func WithBufferSize(size int) Option {
	return func(t *Table) {
		if size > 0 {
			t.bufferSize = size
		}
	}
}

// WithLogger sets the logger used for connection lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver registers a callback invoked with the total number of open
// connections after every connect and disconnect.
func WithObserver(fn func(open int)) Option {
	return func(t *Table) {
		t.observe = fn
	}
}
