package receiver

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/dispatchkit/pkg/cache"
	"github.com/dmitrymomot/dispatchkit/pkg/event"
	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/logger"
)

// Acknowledger reports that an event was presented to the user.
type Acknowledger interface {
	Acknowledge(ctx context.Context, eventID string) error
}

// AcknowledgerFunc adapts a function to Acknowledger.
type AcknowledgerFunc func(ctx context.Context, eventID string) error

func (f AcknowledgerFunc) Acknowledge(ctx context.Context, eventID string) error {
	return f(ctx, eventID)
}

// Delivery is an event together with the channel it arrived on.
type Delivery struct {
	Event event.Event
	Via   ledger.Channel
}

// Receiver deduplicates, presents and acknowledges events. Safe for
// concurrent use.
type Receiver struct {
	ack     Acknowledger
	present Presenter
	window  int
	seen    *cache.LRU[string, ledger.Channel]
	logger  *slog.Logger

	pending  map[string]struct{}
	inflight map[string][]Delivery
	mu       sync.Mutex
}

// New creates a receiver that acknowledges through ack.
func New(ack Acknowledger, opts ...Option) *Receiver {
	r := &Receiver{
		ack:      ack,
		present:  func(context.Context, event.Event, ledger.Channel) error { return nil },
		window:   DefaultWindow,
		logger:   slog.Default(),
		pending:  make(map[string]struct{}),
		inflight: make(map[string][]Delivery),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.seen = cache.NewLRU[string, ledger.Channel](r.window)
	return r
}

// Receive presents evt unless its id was already presented through any
// channel, then acknowledges it. It reports whether the event was presented.
// A copy arriving while another copy of the same id is being presented is
// queued; it is dropped once that presentation succeeds and presented in its
// place if it fails. A failed acknowledgement is kept pending and does not
// fail the call.
func (r *Receiver) Receive(ctx context.Context, evt event.Event, via ledger.Channel) (bool, error) {
	if evt.ID == "" {
		return false, ErrInvalidEventID
	}

	r.mu.Lock()
	if r.seen.Contains(evt.ID) {
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "duplicate delivery dropped",
			logger.EventID(evt.ID),
			logger.Channel(string(via)),
		)
		return false, nil
	}
	if queued, ok := r.inflight[evt.ID]; ok {
		r.inflight[evt.ID] = append(queued, Delivery{Event: evt, Via: via})
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "delivery queued behind in-flight presentation",
			logger.EventID(evt.ID),
			logger.Channel(string(via)),
		)
		return false, nil
	}
	r.inflight[evt.ID] = nil
	r.mu.Unlock()

	var errs []error
	next := Delivery{Event: evt, Via: via}
	for {
		err := r.present(ctx, next.Event, next.Via)

		r.mu.Lock()
		if err == nil {
			r.seen.Put(evt.ID, next.Via)
			delete(r.inflight, evt.ID)
			r.mu.Unlock()
			r.acknowledge(ctx, evt.ID)
			return true, nil
		}

		errs = append(errs, err)
		queued := r.inflight[evt.ID]
		if len(queued) == 0 {
			// Not shown: let a later delivery of the same event try again.
			delete(r.inflight, evt.ID)
			r.mu.Unlock()
			return false, errors.Join(append([]error{ErrPresentFailed}, errs...)...)
		}
		next, r.inflight[evt.ID] = queued[0], queued[1:]
		r.mu.Unlock()
	}
}

// Run receives deliveries until ctx is done or the channel is closed.
func (r *Receiver) Run(ctx context.Context, deliveries <-chan Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if _, err := r.Receive(ctx, d.Event, d.Via); err != nil {
				r.logger.WarnContext(ctx, "failed to present event",
					logger.EventID(d.Event.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// FlushAcks retries pending acknowledgements. Successful ones are dropped
// from the pending set; the rest stay for the next flush.
func (r *Receiver) FlushAcks(ctx context.Context) error {
	var errs []error
	for _, id := range r.Pending() {
		if err := r.ack.Acknowledge(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrAckFailed}, errs...)...)
	}
	return nil
}

// Pending returns the ids whose acknowledgement has not succeeded yet.
func (r *Receiver) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Seen reports whether evt id is inside the dedup window.
func (r *Receiver) Seen(eventID string) bool {
	return r.seen.Contains(eventID)
}

func (r *Receiver) acknowledge(ctx context.Context, eventID string) {
	if err := r.ack.Acknowledge(ctx, eventID); err != nil {
		r.logger.WarnContext(ctx, "acknowledgement failed, keeping it pending",
			logger.EventID(eventID),
			logger.Error(err),
		)
		r.mu.Lock()
		r.pending[eventID] = struct{}{}
		r.mu.Unlock()
	}
}
