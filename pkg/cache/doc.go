// Package cache provides a generic, thread-safe LRU cache.
//
//	plans := cache.NewLRUCache[string, subscription.Plan](256,
//	    cache.WithTTL[string, subscription.Plan](time.Minute),
//	)
//	plans.Put("pro", plan)
//	p, ok := plans.Get("pro")
//
// Entries leave the cache when it is full (least recently used first), when
// their TTL has passed, or through Remove and Clear. WithEvictCallback observes
// all of these, which is how owners release resources held by cached values.
package cache
