package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
	"github.com/dmitrymomot/dispatchkit/pkg/registry"
)

// Resolver returns the current endpoints of a recipient.
type Resolver interface {
	Resolve(ctx context.Context, recipientID string) []registry.Endpoint
}

// Dispatcher fans events out to recipients. Safe for concurrent use.
type Dispatcher struct {
	ledger     ledger.Ledger
	resolver   Resolver
	deliverers map[ledger.Channel]Deliverer
	workers    int
	logger     *slog.Logger
	recorder   Recorder
}

// New creates a dispatcher. Channels without a deliverer fail their attempts
// with ErrNoDeliverer.
func New(l ledger.Ledger, resolver Resolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ledger:     l,
		resolver:   resolver,
		deliverers: make(map[ledger.Channel]Deliverer),
		workers:    DefaultWorkers,
		logger:     slog.Default(),
		recorder:   noopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers evt to every recipient. The error is non-nil only for
// malformed input; per-recipient failures are in the Report.
func (d *Dispatcher) Dispatch(ctx context.Context, evt event.Event, recipientIDs []string) (Report, error) {
	if err := evt.Validate(); err != nil {
		return Report{}, err
	}
	recipients, err := uniqueRecipients(recipientIDs)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	outcomes := make([]Outcome, len(recipients))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, rid := range recipients {
		g.Go(func() error {
			outcomes[i] = d.deliverTo(ctx, evt, rid)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{EventID: evt.ID, Outcomes: outcomes}
	d.logger.InfoContext(ctx, "event dispatched",
		logger.EventID(evt.ID),
		slog.String("kind", evt.Kind.String()),
		slog.Int("recipients", len(recipients)),
		slog.Int("delivered", report.Delivered()),
		logger.Duration(time.Since(start)),
	)
	return report, nil
}

func (d *Dispatcher) deliverTo(ctx context.Context, evt event.Event, recipientID string) Outcome {
	out := Outcome{
		RecipientID: recipientID,
		Status:      ledger.StatusNotSent,
		Channels:    []ledger.Channel{},
		Attempts:    []Attempt{},
	}
	log := d.logger.With(logger.EventID(evt.ID), logger.RecipientID(recipientID))

	entry, err := d.ledger.Ensure(ctx, evt.ID, recipientID)
	if err != nil {
		log.ErrorContext(ctx, "failed to ensure ledger entry", logger.Error(err))
		out.setErr(err)
		d.recorder.ObserveOutcome(string(out.Status), false)
		return out
	}
	out.Status = entry.Status

	endpoints := d.resolver.Resolve(ctx, recipientID)
	if len(endpoints) == 0 {
		out.Unreachable = true
		log.InfoContext(ctx, "recipient unreachable")
		d.recorder.ObserveOutcome(string(out.Status), true)
		return out
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		attempts = make([]Attempt, len(endpoints))
		errs     []error
		latest   *ledger.Entry
	)
	for i, ep := range endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ch := ep.Channel()
			began := time.Now()
			err := d.attempt(ctx, ep, evt)
			attempts[i] = newAttempt(ch, err)
			d.recorder.ObserveAttempt(string(ch), attempts[i].Result, time.Since(began))

			if err != nil {
				log.WarnContext(ctx, "delivery attempt failed",
					logger.Channel(string(ch)),
					slog.String("result", attempts[i].Result),
					logger.Error(err),
				)
				return
			}

			e, err := d.ledger.RecordSent(ctx, evt.ID, recipientID, ch)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.ErrorContext(ctx, "failed to record send", logger.Channel(string(ch)), logger.Error(err))
				errs = append(errs, err)
				return
			}
			if latest == nil || len(e.Channels) >= len(latest.Channels) {
				latest = &e
			}
		}()
	}
	wg.Wait()

	out.Attempts = attempts
	for _, a := range attempts {
		if a.Err == nil && !slices.Contains(out.Channels, a.Channel) {
			out.Channels = append(out.Channels, a.Channel)
		}
	}
	slices.Sort(out.Channels)
	if latest != nil {
		out.Status = latest.Status
	}
	if len(errs) > 0 {
		out.setErr(errors.Join(errs...))
	}

	d.recorder.ObserveOutcome(string(out.Status), false)
	return out
}

func (d *Dispatcher) attempt(ctx context.Context, ep registry.Endpoint, evt event.Event) error {
	deliverer, ok := d.deliverers[ep.Channel()]
	if !ok {
		return ErrNoDeliverer
	}
	return deliverer.Deliver(ctx, ep, evt)
}

func (o *Outcome) setErr(err error) {
	o.Err = err
	o.Error = err.Error()
}

func uniqueRecipients(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, ErrNoRecipients
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, ErrInvalidRecipient
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
