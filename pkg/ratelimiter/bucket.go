package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config describes a token bucket.
type Config struct {
	Capacity       int           // burst size
	RefillRate     int           // tokens added per interval
	RefillInterval time.Duration
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int // negative when the request was denied
	ResetAt   time.Time
}

func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is zero for allowed requests.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(now), 0)
}

// Store keeps bucket state.
type Store interface {
	// Take removes n tokens from the bucket at key and returns what is left.
	// A denied take leaves the bucket unchanged and reports a negative count.
	Take(ctx context.Context, key string, n int, cfg Config) (remaining int, resetAt time.Time, err error)
}

// Bucket applies one Config to every key.
type Bucket struct {
	store Store
	cfg   Config
}

func NewBucket(store Store, cfg Config) (*Bucket, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, cfg: cfg}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, ErrInvalidTokenCount
	}
	remaining, resetAt, err := b.store.Take(ctx, key, n, b.cfg)
	if err != nil {
		return Result{}, err
	}
	return Result{Limit: b.cfg.Capacity, Remaining: remaining, ResetAt: resetAt}, nil
}
