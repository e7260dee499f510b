package dispatch

import "time"

// Recorder observes delivery attempts and per-recipient outcomes.
type Recorder interface {
	ObserveAttempt(channel, result string, took time.Duration)
	ObserveOutcome(status string, unreachable bool)
}

type noopRecorder struct{}

func (noopRecorder) ObserveAttempt(string, string, time.Duration) {}
func (noopRecorder) ObserveOutcome(string, bool)                  {}
