package push

import (
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
)

// Target is a device token registered for a recipient.
type Target struct {
	RecipientID string    `json:"recipient_id"`
	Token       string    `json:"token"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Stale reports whether the token was last refreshed more than maxAge ago.
// A non-positive maxAge disables the check.
func (t Target) Stale(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(t.RefreshedAt) > maxAge
}

// Message is the provider payload for one device.
type Message struct {
	Token   string         `json:"token"`
	EventID string         `json:"event_id"`
	Kind    string         `json:"kind"`
	Title   string         `json:"title"`
	Body    string         `json:"body,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewMessage builds the message for evt addressed to token.
func NewMessage(token string, evt event.Event) Message {
	return Message{
		Token:   token,
		EventID: evt.ID,
		Kind:    evt.Kind.String(),
		Title:   evt.Payload.Title,
		Body:    evt.Payload.Body,
		Data:    evt.Payload.Data,
	}
}
