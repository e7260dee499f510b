package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/dispatchkit/pkg/auth"
	"github.com/dmitrymomot/dispatchkit/pkg/dispatch"
	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/httpserver"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/live"
	"github.com/dmitrymomot/dispatchkit/pkg/ratelimiter"
	"github.com/dmitrymomot/dispatchkit/pkg/stats"
)

// Dispatcher fans an event out to recipients.
type Dispatcher interface {
	Dispatch(ctx context.Context, evt event.Event, recipientIDs []string) (dispatch.Report, error)
}

// Registry manages a recipient's push targets and live handles.
type Registry interface {
	RegisterPushTarget(ctx context.Context, recipientID, token string) error
	InvalidatePushTarget(ctx context.Context, recipientID, token string) error
	Connect(ctx context.Context, recipientID string) (*live.Conn, error)
	Disconnect(conn *live.Conn)
}

// API holds the HTTP handlers.
type API struct {
	dispatcher Dispatcher
	ledger     ledger.Ledger
	registry   Registry
	sessions   *auth.Service

	stats         *stats.View
	checks        []httpserver.Check
	metrics       http.Handler
	internalToken string
	limiter       *ratelimiter.Bucket
	heartbeat     time.Duration
	logger        *slog.Logger
}

func New(d Dispatcher, l ledger.Ledger, reg Registry, sessions *auth.Service, opts ...Option) *API {
	a := &API{
		dispatcher: d,
		ledger:     l,
		registry:   reg,
		sessions:   sessions,
		heartbeat:  DefaultHeartbeat,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.HealthHandler(a.logger, DefaultHealthTimeout))
	r.Get("/health/ready", httpserver.HealthHandler(a.logger, DefaultHealthTimeout, a.checks...))
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/internal", func(r chi.Router) {
		r.Use(a.requireInternalToken)
		r.Post("/events", a.dispatchEvent)
		r.Get("/ledger", a.queryLedger)
		if a.stats != nil {
			r.Get("/stats", a.queryStats)
		}
	})

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(a.sessions))
			if a.limiter != nil {
				r.Use(ratelimiter.Middleware(a.limiter, recipientKey))
			}
			r.Put("/push-targets", a.registerPushTarget)
			r.Delete("/push-targets/{token}", a.invalidatePushTarget)
			r.Post("/acks", a.acknowledge)
		})
		r.With(auth.MiddlewareWithExtractor(a.sessions, auth.FirstOf(auth.BearerToken, auth.QueryToken("token")))).
			Get("/stream", a.stream)
	})

	return r
}

func recipientKey(r *http.Request) string {
	id, _ := auth.RecipientID(r.Context())
	return id
}
