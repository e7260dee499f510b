package dispatch

import (
	"errors"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/live"
	"github.com/dmitrymomot/dispatchkit/pkg/push"
)

// Attempt is the result of one delivery attempt on one endpoint.
type Attempt struct {
	Channel ledger.Channel `json:"channel"`
	Result  string         `json:"result"`
	Err     error          `json:"-"`
	Error   string         `json:"error,omitempty"`
}

// Attempt results.
const (
	ResultOK           = "ok"
	ResultInvalidToken = "invalid_token"
	ResultClosed       = "closed"
	ResultBackpressure = "backpressure"
	ResultCircuitOpen  = "circuit_open"
	ResultFailed       = "failed"
)

func classify(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, push.ErrInvalidToken):
		return ResultInvalidToken
	case errors.Is(err, live.ErrClosed):
		return ResultClosed
	case errors.Is(err, live.ErrBackpressure):
		return ResultBackpressure
	case errors.Is(err, push.ErrCircuitOpen):
		return ResultCircuitOpen
	default:
		return ResultFailed
	}
}

func newAttempt(ch ledger.Channel, err error) Attempt {
	a := Attempt{Channel: ch, Result: classify(err), Err: err}
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// Outcome is the delivery result for one recipient.
type Outcome struct {
	RecipientID string           `json:"recipient_id"`
	Status      ledger.Status    `json:"status"`
	Channels    []ledger.Channel `json:"channels"`
	Attempts    []Attempt        `json:"attempts"`
	// Unreachable is set when no endpoint was resolved.
	Unreachable bool   `json:"unreachable"`
	Err         error  `json:"-"`
	Error       string `json:"error,omitempty"`
}

// Delivered reports whether at least one channel accepted the event during
// this call.
func (o Outcome) Delivered() bool {
	return len(o.Channels) > 0
}

// Report is the result of one Dispatch call, one Outcome per distinct
// recipient in input order.
type Report struct {
	EventID  string    `json:"event_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Delivered counts recipients reached during this call.
func (r Report) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Delivered() {
			n++
		}
	}
	return n
}

// Failed returns the outcomes of recipients not reached during this call.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Delivered() {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome for recipientID.
func (r Report) Outcome(recipientID string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.RecipientID == recipientID {
			return o, true
		}
	}
	return Outcome{}, false
}
