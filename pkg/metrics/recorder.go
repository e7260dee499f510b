package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notify"

// Recorder holds the dispatch collectors.
type Recorder struct {
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	live     prometheus.Gauge
}

// NewRecorder registers the collectors on reg. A nil reg means the default
// registerer.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_attempts_total",
		Help:      "Delivery attempts per channel and result.",
	}, []string{"channel", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dispatch_attempt_duration_seconds",
		Help:      "Duration of a single delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_outcomes_total",
		Help:      "Per-recipient dispatch outcomes by resulting ledger status.",
	}, []string{"status", "unreachable"})
	live := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_connections",
		Help:      "Open live connections.",
	})

	var err error
	if attempts, err = register(reg, attempts); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if outcomes, err = register(reg, outcomes); err != nil {
		return nil, err
	}
	if live, err = register(reg, live); err != nil {
		return nil, err
	}

	return &Recorder{attempts: attempts, duration: duration, outcomes: outcomes, live: live}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *Recorder) ObserveAttempt(channel, result string, took time.Duration) {
	r.attempts.WithLabelValues(channel, result).Inc()
	r.duration.WithLabelValues(channel).Observe(took.Seconds())
}

func (r *Recorder) ObserveOutcome(status string, unreachable bool) {
	r.outcomes.WithLabelValues(status, strconv.FormatBool(unreachable)).Inc()
}

// SetLiveConnections sets the open live connection gauge.
func (r *Recorder) SetLiveConnections(n int) {
	r.live.Set(float64(n))
}

// Handler serves the metrics of g, or of the default gatherer when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
