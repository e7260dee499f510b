package live

import "errors"

var (
	ErrClosed       = errors.New("live: connection closed")
	ErrBackpressure = errors.New("live: outbound buffer full")
)
