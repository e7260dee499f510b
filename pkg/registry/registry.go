package registry

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/live"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
)

// Registry resolves recipients to endpoints.
type Registry struct {
	live        *live.Table
	tokens      push.TokenStore
	maxTokenAge time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxTokenAge skips push tokens not refreshed within age. Zero disables
// the check.
func WithMaxTokenAge(age time.Duration) Option {
	return func(r *Registry) {
		if age >= 0 {
			r.maxTokenAge = age
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a registry over the live table and the push token store.
func New(table *live.Table, tokens push.TokenStore, opts ...Option) *Registry {
	r := &Registry{
		live:   table,
		tokens: tokens,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the recipient's endpoints at call time: live handles first,
// then push targets. A token store failure is logged and only the live
// endpoints are returned, so the recipient degrades to fewer channels rather
// than failing the dispatch.
func (r *Registry) Resolve(ctx context.Context, recipientID string) []Endpoint {
	conns := r.live.Lookup(recipientID)
	endpoints := make([]Endpoint, 0, len(conns)+1)
	for _, c := range conns {
		endpoints = append(endpoints, LiveHandle{Conn: c})
	}

	targets, err := r.tokens.List(ctx, recipientID)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to list push targets",
			logger.RecipientID(recipientID),
			logger.Error(err),
		)
		return endpoints
	}

	now := r.now()
	for _, t := range targets {
		if t.Stale(now, r.maxTokenAge) {
			r.logger.DebugContext(ctx, "skipping stale push target",
				logger.RecipientID(recipientID),
				slog.Time("refreshed_at", t.RefreshedAt),
			)
			continue
		}
		endpoints = append(endpoints, PushTarget{Target: t})
	}
	return endpoints
}

// RegisterPushTarget adds or refreshes a device token for recipientID.
func (r *Registry) RegisterPushTarget(ctx context.Context, recipientID, token string) error {
	if recipientID == "" {
		return ErrInvalidRecipient
	}
	return r.tokens.Register(ctx, push.Target{
		RecipientID: recipientID,
		Token:       token,
		RefreshedAt: r.now(),
	})
}

// InvalidatePushTarget removes a device token.
func (r *Registry) InvalidatePushTarget(ctx context.Context, recipientID, token string) error {
	if err := r.tokens.Invalidate(ctx, recipientID, token); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "push target invalidated", logger.RecipientID(recipientID))
	return nil
}

// Connect opens a live handle for recipientID bound to ctx.
func (r *Registry) Connect(ctx context.Context, recipientID string) (*live.Conn, error) {
	if recipientID == "" {
		return nil, ErrInvalidRecipient
	}
	return r.live.Connect(ctx, recipientID), nil
}

// Disconnect closes a live handle.
func (r *Registry) Disconnect(conn *live.Conn) {
	r.live.Disconnect(conn)
}

// LiveConnections returns the number of open live handles.
func (r *Registry) LiveConnections() int {
	return r.live.Len()
}
