package breaker

import (
	"context"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed allows operations to pass through.
	StateClosed State = iota
	// StateOpen rejects all operations.
	StateOpen
	// StateHalfOpen allows probe operations to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker is a three-state circuit breaker. Safe for concurrent use.
// The zero value is not usable; use New.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	successThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	state           State
	failures        int
	successCount    int
	lastFailureTime time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive half-open successes are
// required to close the circuit. The default of 1 closes on the first
// successful probe.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// WithRecoveryTimeout sets how long the circuit stays open before a probe
// is allowed.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.recoveryTimeout = d
		}
	}
}

// WithClock injects a custom time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// New creates a circuit breaker. Defaults: open after 5 consecutive
// failures, stay open for 60 seconds, close after 1 half-open success.
func New(opts ...Option) *Breaker {
	b := &Breaker{
		failureThreshold: 5,
		successThreshold: 1,
		recoveryTimeout:  60 * time.Second,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs op through the circuit breaker. When the circuit is open
// and the recovery timeout has not elapsed, ErrOpen is returned and op is
// never invoked. Otherwise op runs and its result drives the state
// transitions. The error returned by op is passed through unchanged.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if op == nil {
		return ErrNilOperation
	}
	if !b.allow() {
		return ErrOpen
	}

	if err := op(ctx); err != nil {
		b.recordFailure()
		return err
	}

	b.recordSuccess()
	return nil
}

// allow reports whether an operation may proceed, transitioning from open
// to half-open once the recovery timeout elapses.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		if b.now().Sub(b.lastFailureTime) > b.recoveryTimeout {
			b.state = StateHalfOpen
			b.successCount = 0
			return true
		}
		return false

	case StateHalfOpen:
		return true

	default:
		return false
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0

	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successCount = 0
		}
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailureTime = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
		}

	case StateHalfOpen:
		// Probe failed, reopen immediately.
		b.state = StateOpen
		b.failures = b.failureThreshold
		b.successCount = 0
	}
}

// State returns the current state, accounting for the automatic
// open-to-half-open transition that Execute would perform.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && b.now().Sub(b.lastFailureTime) > b.recoveryTimeout {
		return StateHalfOpen
	}
	return b.state
}

// Reset returns the breaker to the closed state and clears counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.successCount = 0
	b.lastFailureTime = time.Time{}
}

// Stats provides visibility into breaker internals for monitoring.
type Stats struct {
	State           string
	Failures        int
	SuccessCount    int
	LastFailureTime time.Time
}

// Stats returns the current statistics of the circuit breaker.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		State:           b.state.String(),
		Failures:        b.failures,
		SuccessCount:    b.successCount,
		LastFailureTime: b.lastFailureTime,
	}
}
