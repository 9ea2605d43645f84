package breaker

import "errors"

var (
	// ErrOpen is returned by Execute when the circuit is open and the
	// operation was rejected without being attempted.
	ErrOpen = errors.New("breaker: circuit is open")

	// ErrNilOperation is returned when Execute is called with a nil operation.
	ErrNilOperation = errors.New("breaker: operation cannot be nil")
)
