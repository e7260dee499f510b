package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
	"github.com/dmitrymomot/dispatchkit/pkg/ratelimiter"
	"github.com/dmitrymomot/dispatchkit/pkg/stats"
)

const (
	DefaultHeartbeat     = 25 * time.Second
	DefaultMaxBodySize   = 1 << 20
	DefaultQueryLimit    = 100
	MaxQueryLimit        = 1000
	DefaultHealthTimeout = 3 * time.Second
)

// Option configures an API.
type Option func(*API)

// WithStats enables GET /internal/stats.
func WithStats(v *stats.View) Option {
	return func(a *API) {
		a.stats = v
	}
}

// WithLogger sets the logger for request and handler logs.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithReadinessChecks adds probes run by /health/ready.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(a *API) {
		a.checks = append(a.checks, checks...)
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *API) {
		a.metrics = h
	}
}

// WithInternalToken requires "Authorization: Bearer <token>" on /internal
// routes. Empty disables the check.
func WithInternalToken(token string) Option {
	return func(a *API) {
		a.internalToken = token
	}
}

// WithHeartbeat sets how often an idle live stream sends a heartbeat signal.
func WithHeartbeat(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.heartbeat = d
		}
	}
}

// WithRecipientRateLimit limits push-target and ack calls per authenticated
// recipient.
func WithRecipientRateLimit(b *ratelimiter.Bucket) Option {
	return func(a *API) {
		a.limiter = b
	}
}
