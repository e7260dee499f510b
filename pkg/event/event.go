package event

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the upstream facts the pipeline knows how to deliver.
type Kind string

const (
	KindOrderAssigned      Kind = "order_assigned"
	KindOrderStatusChanged Kind = "order_status_changed"
	KindOrderReassigned    Kind = "order_reassigned"
	KindBroadcast          Kind = "broadcast"
)

// Kinds returns all supported kinds.
func Kinds() []Kind {
	return []Kind{KindOrderAssigned, KindOrderStatusChanged, KindOrderReassigned, KindBroadcast}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOrderAssigned, KindOrderStatusChanged, KindOrderReassigned, KindBroadcast:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// Payload is the presentable part of an event. Data carries structured
// fields such as order number, price or distance and is passed to the push
// provider and live clients as is.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Event is an immutable fact produced upstream.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Payload    Payload   `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
	Supersedes string    `json:"supersedes,omitempty"` // audit only, never cancels in-flight delivery
}

// New creates an event with a generated ID and the current time.
func New(kind Kind, payload Payload) (Event, error) {
	evt := Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := evt.Validate(); err != nil {
		return Event{}, err
	}
	return evt, nil
}

// Validate checks the event at the dispatch boundary.
func (e Event) Validate() error {
	if e.ID == "" {
		return errors.Join(ErrInvalidEvent, ErrMissingID)
	}
	if !e.Kind.Valid() {
		return errors.Join(ErrInvalidEvent, ErrUnknownKind)
	}
	if e.Payload.Title == "" {
		return errors.Join(ErrInvalidEvent, ErrEmptyTitle)
	}
	return nil
}
