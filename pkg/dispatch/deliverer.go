package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
	"github.com/dmitrymomot/dispatchkit/pkg/registry"
)

// Deliverer sends an event through one endpoint. It returns nil when the
// transport accepted the event.
type Deliverer interface {
	Deliver(ctx context.Context, ep registry.Endpoint, evt event.Event) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, ep registry.Endpoint, evt event.Event) error

func (f DelivererFunc) Deliver(ctx context.Context, ep registry.Endpoint, evt event.Event) error {
	return f(ctx, ep, evt)
}

// LiveDeliverer writes to an open live connection. It never blocks: a full
// buffer or a connection closed mid-flight is returned as an error.
type LiveDeliverer struct{}

func (LiveDeliverer) Deliver(_ context.Context, ep registry.Endpoint, evt event.Event) error {
	h, ok := ep.(registry.LiveHandle)
	if !ok || h.Conn == nil {
		return ErrUnsupportedTarget
	}
	return h.Conn.Send(evt)
}

// TokenInvalidator drops push tokens the provider rejected.
type TokenInvalidator interface {
	InvalidatePushTarget(ctx context.Context, recipientID, token string) error
}

// PushDeliverer sends through the push provider and invalidates tokens the
// provider reports as invalid.
type PushDeliverer struct {
	provider    push.Provider
	invalidator TokenInvalidator
	timeout     time.Duration
}

// PushOption configures a PushDeliverer.
type PushOption func(*PushDeliverer)

// WithPushTimeout bounds a single push attempt, including the provider call.
func WithPushTimeout(timeout time.Duration) PushOption {
	return func(d *PushDeliverer) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewPushDeliverer(provider push.Provider, invalidator TokenInvalidator, opts ...PushOption) *PushDeliverer {
	d := &PushDeliverer{
		provider:    provider,
		invalidator: invalidator,
		timeout:     10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *PushDeliverer) Deliver(ctx context.Context, ep registry.Endpoint, evt event.Event) error {
	target, ok := ep.(registry.PushTarget)
	if !ok {
		return ErrUnsupportedTarget
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.provider.Send(ctx, push.NewMessage(target.Token(), evt))
	if err == nil {
		return nil
	}
	if push.IsInvalidToken(err) && d.invalidator != nil {
		// Invalidation must outlive the attempt deadline.
		invCtx := context.WithoutCancel(ctx)
		if invErr := d.invalidator.InvalidatePushTarget(invCtx, target.RecipientID(), target.Token()); invErr != nil {
			return errors.Join(err, invErr)
		}
	}
	return err
}
