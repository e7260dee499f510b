// Package cache provides a bounded, thread-safe LRU map.
//
// The receiver uses it as a dedup window: event ids seen on any channel are
// kept until capacity pushes the least recently touched ones out.
//
//	seen := cache.NewLRU[string, time.Time](1024)
//	if !seen.PutIfAbsent(evt.ID, time.Now()) {
//		return // duplicate
//	}
//
// Get, Put, PutIfAbsent and Remove are O(1).
package cache
