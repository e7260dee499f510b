// Package ratelimiter implements a token bucket limiter keyed by an
// arbitrary string, such as an authenticated recipient id.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, ratelimiter.Config{
//		Capacity:       30,
//		RefillRate:     10,
//		RefillInterval: time.Second,
//	})
//
//	r.Use(ratelimiter.Middleware(bucket, recipientKey))
//
// Requests whose key is empty bypass the limiter.
package ratelimiter
