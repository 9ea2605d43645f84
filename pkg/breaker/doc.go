// Package breaker implements a three-state circuit breaker for guarding
// fallible operations such as provider API calls.
//
// The breaker starts closed and passes operations through. After a
// configurable number of consecutive failures it opens and rejects
// calls immediately with ErrOpen. Once the recovery timeout elapses the
// next call is let through as a half-open probe; its outcome decides
// whether the circuit closes again or reopens.
//
//	cb := breaker.New()
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return client.Send(ctx, msg)
//	})
//	if errors.Is(err, breaker.ErrOpen) {
//	    // fail fast: the operation was not attempted
//	}
//
// The breaker is safe for concurrent use. Note that the half-open state
// admits concurrent probes: two goroutines calling Execute at the same
// moment after the recovery timeout may both run their operation.
package breaker
