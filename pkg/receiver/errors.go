package receiver

import "errors"

var (
	ErrAckFailed      = errors.New("receiver: acknowledgement failed")
	ErrPresentFailed  = errors.New("receiver: presentation failed")
	ErrInvalidEventID = errors.New("receiver: event id is required")
	ErrAckNotRecorded = errors.New("receiver: acknowledgement not recorded yet")
)
