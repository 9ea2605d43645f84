package dispatch

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/notifyq/pkg/breaker"
	"github.com/dmitrymomot/notifyq/pkg/metrics"
	"github.com/dmitrymomot/notifyq/pkg/notification"
	"github.com/dmitrymomot/notifyq/pkg/ratelimit"
)

// Defaults for a Queue, matching a moderate transactional workload.
const (
	DefaultBatchSize     = 50
	DefaultMaxSize       = 10000
	DefaultRateLimit     = 60 // notifications per minute
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = time.Second
	DefaultSendTimeout   = 10 * time.Second
	DefaultSMSInterval   = 100 * time.Millisecond
)

// DropHandler receives notifications that exhausted their retry budget,
// along with the final send error.
type DropHandler func(item notification.CreateNotification, err error)

// Option configures a Queue.
type Option func(*Queue)

// WithBatchSize sets the maximum notifications dispatched per cycle.
// Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.batchSize = n
		}
	}
}

// WithMaxSize caps the buffer; items beyond the cap are dropped from the
// low-priority tail. Values below 1 are ignored.
func WithMaxSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxSize = n
		}
	}
}

// WithRateLimit sets the per-minute dispatch budget. Values below 1 are
// ignored.
func WithRateLimit(perMinute int) Option {
	return func(q *Queue) {
		if perMinute > 0 {
			q.rateLimit = perMinute
		}
	}
}

// WithRetryAttempts sets how many times a failed notification is retried
// before it is dropped. Negative values are ignored; zero disables
// retries.
func WithRetryAttempts(n int) Option {
	return func(q *Queue) {
		if n >= 0 {
			q.retryAttempts = n
		}
	}
}

// WithRetryDelay sets the pause before re-checking an exhausted rate
// budget.
func WithRetryDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.retryDelay = d
		}
	}
}

// WithSendTimeout bounds each provider call.
func WithSendTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.sendTimeout = d
		}
	}
}

// WithSMSInterval sets the pause between sequential SMS sends.
func WithSMSInterval(d time.Duration) Option {
	return func(q *Queue) {
		if d >= 0 {
			q.smsInterval = d
		}
	}
}

// WithLogger attaches a structured logger. The queue logs dispatch
// failures and drops; nil restores the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(q *Queue) {
		if log != nil {
			q.log = log
		}
	}
}

// WithMonitor attaches a performance monitor. The queue records queue
// size, per-batch processing time, error rate, and drop counters.
func WithMonitor(m *metrics.Monitor) Option {
	return func(q *Queue) { q.monitor = m }
}

// WithBreaker routes every provider call through the circuit breaker.
func WithBreaker(b *breaker.Breaker) Option {
	return func(q *Queue) { q.breaker = b }
}

// WithThrottle applies a per-user limiter at enqueue time. Each item is
// checked against the key "throttle:<user>:<type>:<channel>"; items over
// the budget are rejected rather than buffered.
func WithThrottle(l ratelimit.Limiter) Option {
	return func(q *Queue) { q.throttle = l }
}

// WithDropHandler registers a callback for permanently failed items.
func WithDropHandler(fn DropHandler) Option {
	return func(q *Queue) { q.dropHandler = fn }
}

// WithRateLimitStore backs the dispatch rate budget with a custom store,
// e.g. ratelimit.RedisStore for budgets shared across processes. The
// default is an in-process memory store owned by the queue.
func WithRateLimitStore(store ratelimit.Store) Option {
	return func(q *Queue) {
		if store != nil {
			q.limiterStore = store
			q.ownsStore = false
		}
	}
}
