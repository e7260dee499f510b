package ledger

import (
	"slices"
	"time"
)

// Entry is the auditable delivery record for one (event, recipient) pair.
type Entry struct {
	EventID     string     `json:"event_id"`
	RecipientID string     `json:"recipient_id"`
	Status      Status     `json:"status"`
	Channels    []Channel  `json:"channels"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}

// HasChannel reports whether c already delivered this entry.
func (e Entry) HasChannel(c Channel) bool {
	return slices.Contains(e.Channels, c)
}

// clone returns a deep copy so callers never share backend state.
func (e Entry) clone() Entry {
	out := e
	out.Channels = slices.Clone(e.Channels)
	if e.SentAt != nil {
		t := *e.SentAt
		out.SentAt = &t
	}
	if e.ReadAt != nil {
		t := *e.ReadAt
		out.ReadAt = &t
	}
	if out.Channels == nil {
		out.Channels = []Channel{}
	}
	return out
}

// applySent advances the entry to sent (first writer wins) and merges the
// channel into the set. It reports whether anything changed.
func (e *Entry) applySent(ch Channel, now time.Time) bool {
	changed := false
	if e.Status == StatusNotSent {
		e.Status = StatusSent
		e.SentAt = &now
		changed = true
	}
	if !e.HasChannel(ch) {
		e.Channels = append(e.Channels, ch)
		slices.Sort(e.Channels)
		changed = true
	}
	return changed
}

// applyRead advances sent → read. Read entries are left alone.
func (e *Entry) applyRead(now time.Time) error {
	switch e.Status {
	case StatusRead:
		return nil
	case StatusSent:
		e.Status = StatusRead
		e.ReadAt = &now
		return nil
	default:
		return ErrNotSent
	}
}

func normalizeChannels(raw []string) []Channel {
	out := make([]Channel, 0, len(raw))
	for _, c := range raw {
		ch := Channel(c)
		if !slices.Contains(out, ch) {
			out = append(out, ch)
		}
	}
	slices.Sort(out)
	return out
}

func validateKey(eventID, recipientID string) error {
	if eventID == "" || recipientID == "" {
		return ErrInvalidKey
	}
	return nil
}
