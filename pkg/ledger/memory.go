package ledger

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

type entryKey struct {
	eventID     string
	recipientID string
}

// MemoryLedger is an in-memory Ledger. Suitable for development and testing.
type MemoryLedger struct {
	entries map[entryKey]*Entry
	now     func() time.Time
	mu      sync.Mutex
}

// MemoryOption configures a MemoryLedger.
type MemoryOption func(*MemoryLedger)

// WithMemoryClock overrides the time source.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger(opts ...MemoryOption) *MemoryLedger {
	l := &MemoryLedger{
		entries: make(map[entryKey]*Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLedger) Ensure(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := entryKey{eventID, recipientID}
	if e, ok := l.entries[key]; ok {
		return e.clone(), nil
	}

	e := &Entry{
		EventID:     eventID,
		RecipientID: recipientID,
		Status:      StatusNotSent,
		Channels:    []Channel{},
		CreatedAt:   l.now(),
	}
	l.entries[key] = e
	return e.clone(), nil
}

func (l *MemoryLedger) RecordSent(ctx context.Context, eventID, recipientID string, ch Channel) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}
	if !ch.Valid() {
		return Entry{}, ErrInvalidChannel
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[entryKey{eventID, recipientID}]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	e.applySent(ch, l.now())
	return e.clone(), nil
}

func (l *MemoryLedger) RecordRead(ctx context.Context, eventID, recipientID string) (Entry, error) {
	if err := validateKey(eventID, recipientID); err != nil {
		return Entry{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[entryKey{eventID, recipientID}]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	if err := e.applyRead(l.now()); err != nil {
		return e.clone(), err
	}
	return e.clone(), nil
}

func (l *MemoryLedger) Get(ctx context.Context, eventID, recipientID string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[entryKey{eventID, recipientID}]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	return e.clone(), nil
}

func (l *MemoryLedger) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	l.mu.Lock()
	filtered := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if matches(*e, filter) {
			filtered = append(filtered, e.clone())
		}
	}
	l.mu.Unlock()

	slices.SortFunc(filtered, compareEntries)

	// Negative paging values mean no offset and no limit, as in the SQL and
	// Mongo ledgers.
	start := max(filter.Offset, 0)
	limit := max(filter.Limit, 0)
	if start > len(filtered) {
		return []Entry{}, nil
	}
	end := start + limit
	if limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

// compareEntries orders newest first with a stable key tie-break.
func compareEntries(a, b Entry) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.EventID, b.EventID); c != 0 {
		return c
	}
	return cmp.Compare(a.RecipientID, b.RecipientID)
}

func matches(e Entry, f Filter) bool {
	if f.RecipientID != "" && e.RecipientID != f.RecipientID {
		return false
	}
	if f.EventID != "" && e.EventID != f.EventID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, e.Status) {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}
