package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type bucketState struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
}

// MemoryStore keeps buckets in process memory. Buckets idle longer than the
// stale threshold are dropped by a background sweep until Close.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
	now     func() time.Time

	sweepEvery time.Duration
	staleAfter time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

type MemoryStoreOption func(*MemoryStore)

// WithSweepInterval sets how often stale buckets are removed. Zero disables
// the sweep.
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets:    make(map[string]*bucketState),
		now:        time.Now,
		sweepEvery: 5 * time.Minute,
		staleAfter: time.Hour,
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sweepEvery > 0 {
		go s.sweep()
	}
	return s
}

func (s *MemoryStore) Take(_ context.Context, key string, n int, cfg Config) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucketState{tokens: cfg.Capacity, lastRefill: now}
		s.buckets[key] = b
	}
	b.lastAccess = now

	if intervals := int(now.Sub(b.lastRefill) / cfg.RefillInterval); intervals > 0 {
		intervals = min(intervals, cfg.Capacity/cfg.RefillRate+1)
		b.tokens = min(b.tokens+intervals*cfg.RefillRate, cfg.Capacity)
		b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
		if now.Sub(b.lastRefill) >= cfg.RefillInterval {
			b.lastRefill = now
		}
	}

	resetAt := b.lastRefill.Add(cfg.RefillInterval)
	if b.tokens < n {
		return b.tokens - n, resetAt, nil
	}
	b.tokens -= n
	return b.tokens, resetAt, nil
}

// Close stops the background sweep.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeStale()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) removeStale() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, b := range s.buckets {
		if now.Sub(b.lastAccess) > s.staleAfter {
			delete(s.buckets, key)
		}
	}
}
