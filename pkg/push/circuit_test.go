package push

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_Transitions(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, 1, time.Minute)
	cb.now = func() time.Time { return now }

	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker(2, 1, time.Minute)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestCircuitBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, 2, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)

	var wg sync.WaitGroup
	var admitted atomic.Int32
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cb.Allow() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// The first success frees the slot for the next trial.
	cb.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, 1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow())
	assert.False(t, cb.Allow())
}
