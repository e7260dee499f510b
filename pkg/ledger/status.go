package ledger

import "fmt"

// Status is the delivery state of a ledger entry.
type Status string

const (
	StatusNotSent Status = "not_sent"
	StatusSent    Status = "sent"
	StatusRead    Status = "read"
)

// Statuses lists all statuses in lifecycle order.
func Statuses() []Status {
	return []Status{StatusNotSent, StatusSent, StatusRead}
}

// forward holds the only allowed transitions. Anything else is a regression
// or a skip (read without sent).
var forward = map[Status]Status{
	StatusNotSent: StatusSent,
	StatusSent:    StatusRead,
}

// CanAdvanceTo reports whether the lifecycle permits s → next.
func (s Status) CanAdvanceTo(next Status) bool {
	to, ok := forward[s]
	return ok && to == next
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotSent, StatusSent, StatusRead:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// rank orders statuses for monotonicity checks.
func (s Status) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusRead:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether s is the same as or later than other.
func (s Status) AtLeast(other Status) bool {
	return s.rank() >= other.rank()
}

// ParseStatus converts a raw value into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
	return s, nil
}

// Channel is the transport that delivered an event.
type Channel string

const (
	ChannelPush Channel = "push"
	ChannelLive Channel = "live"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelPush || c == ChannelLive
}

func (c Channel) String() string {
	return string(c)
}
