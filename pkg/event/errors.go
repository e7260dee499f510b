package event

import "errors"

var (
	ErrInvalidEvent = errors.New("event: invalid event")
	ErrMissingID    = errors.New("event: id is required")
	ErrUnknownKind  = errors.New("event: unknown kind")
	ErrEmptyTitle   = errors.New("event: payload title is required")
)
