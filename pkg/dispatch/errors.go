package dispatch

import "errors"

var (
	ErrNoRecipients      = errors.New("dispatch: at least one recipient is required")
	ErrInvalidRecipient  = errors.New("dispatch: recipient id must not be empty")
	ErrUnsupportedTarget = errors.New("dispatch: endpoint not supported by deliverer")
	ErrNoDeliverer       = errors.New("dispatch: no deliverer for channel")
)
