// Package ratelimit provides fixed-window and sliding-window rate
// limiters with pluggable storage backends.
//
// FixedWindow counts requests in consecutive buckets that start at the
// first hit and reset when the window expires. It is cheap and matches
// per-minute sending budgets, at the cost of allowing up to twice the
// nominal rate across a bucket boundary. SlidingWindow tracks individual
// timestamps inside a trailing window and is exact; use it where the
// limit is a correctness rule rather than pacing.
//
//	store := ratelimit.NewMemoryStore()
//	defer store.Close()
//
//	limiter, _ := ratelimit.NewFixedWindow(store, 60, time.Minute)
//	res, _ := limiter.Allow(ctx, "dispatch")
//	if !res.Allowed {
//	    time.Sleep(res.RetryAfter())
//	}
//
// RedisStore implements both backends on go-redis for limits shared
// across processes.
package ratelimit
