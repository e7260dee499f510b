package ledger

import (
	"context"
	"time"
)

// Ledger records delivery attempts and acknowledgements.
// Implementations must serialize concurrent writes for the same pair so the
// status never regresses and channel sets merge instead of overwriting.
type Ledger interface {
	// Ensure creates the entry in not_sent or returns the existing one.
	Ensure(ctx context.Context, eventID, recipientID string) (Entry, error)

	// RecordSent marks the pair as sent through ch. Returns ErrEntryNotFound
	// when Ensure was never called for the pair.
	RecordSent(ctx context.Context, eventID, recipientID string, ch Channel) (Entry, error)

	// RecordRead marks a sent entry as read. Returns ErrNotSent (entry left
	// untouched) when nothing was sent yet; a read entry is returned as is.
	RecordRead(ctx context.Context, eventID, recipientID string) (Entry, error)

	// Get returns a single entry.
	Get(ctx context.Context, eventID, recipientID string) (Entry, error)

	// Query returns entries newest first.
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Filter narrows Query results. Zero values mean "any".
type Filter struct {
	RecipientID string
	EventID     string
	Statuses    []Status
	Since       *time.Time
	Limit       int // 0 or negative = no limit
	Offset      int
}
