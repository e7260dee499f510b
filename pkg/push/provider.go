package push

import "context"

// Provider sends a message to one device.
type Provider interface {
	Send(ctx context.Context, msg Message) error
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, msg Message) error

func (f ProviderFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// DisabledProvider fails every send with ErrProviderDisabled. Used when no
// provider endpoint is configured; live delivery keeps working.
type DisabledProvider struct{}

func (DisabledProvider) Send(context.Context, Message) error {
	return ErrProviderDisabled
}
