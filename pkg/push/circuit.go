package push

import (
	"sync"
	"time"
)

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calling the provider after consecutive transient
// failures and probes it again after the recovery timeout. While half-open
// only one trial request is in flight at a time; every admitted request must
// be followed by RecordSuccess or RecordFailure. Invalid-token responses are
// not failures of the provider. Safe for concurrent use.
type CircuitBreaker struct {
	mu sync.RWMutex

	failureThreshold int
	successThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	state           CircuitState
	failures        int
	successes       int
	lastFailureTime time.Time
	trial           bool
}

// NewCircuitBreaker creates a breaker. Non-positive arguments fall back to
// 5 failures, 2 successes and 30 seconds.
func NewCircuitBreaker(failureThreshold, successThreshold int, recoveryTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 2
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		recoveryTimeout:  recoveryTimeout,
		now:              time.Now,
		state:            CircuitClosed,
	}
}

// Allow reports whether a request may go through. An open circuit turns
// half-open once the recovery timeout has elapsed, and a half-open circuit
// admits a single trial request until its outcome is recorded.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitHalfOpen:
		if cb.trial {
			return false
		}
		cb.trial = true
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) > cb.recoveryTimeout {
			cb.state = CircuitHalfOpen
			cb.successes = 0
			cb.trial = true
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.trial = false
		cb.successes++
		if cb.successes >= cb.successThreshold {
			cb.state = CircuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = cb.now()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.failureThreshold {
			cb.state = CircuitOpen
		}
	case CircuitHalfOpen:
		cb.trial = false
		cb.state = CircuitOpen
		cb.failures = cb.failureThreshold
		cb.successes = 0
	}
}

// State returns the state Allow would act on.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailureTime) > cb.recoveryTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}
