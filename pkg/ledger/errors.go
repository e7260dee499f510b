package ledger

import "errors"

var (
	ErrEntryNotFound  = errors.New("ledger: entry not found")
	ErrNotSent        = errors.New("ledger: entry has not been sent yet")
	ErrInvalidKey     = errors.New("ledger: event id and recipient id are required")
	ErrInvalidChannel = errors.New("ledger: unknown channel")
	ErrInvalidStatus  = errors.New("ledger: unknown status")
	ErrStorage        = errors.New("ledger: storage failure")
)

// IsRejectedAck reports whether err means an acknowledgement was dropped
// because no send has been recorded for the pair.
func IsRejectedAck(err error) bool {
	return errors.Is(err, ErrNotSent) || errors.Is(err, ErrEntryNotFound)
}
