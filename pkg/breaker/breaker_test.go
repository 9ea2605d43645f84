package breaker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyq/pkg/breaker"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errProvider = errors.New("provider unavailable")

func failing(ctx context.Context) error { return errProvider }

func succeeding(ctx context.Context) error { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	cb := breaker.New(breaker.WithFailureThreshold(3))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
		assert.Equal(t, breaker.StateClosed, cb.State())
	}

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	assert.Equal(t, breaker.StateOpen, cb.State())
}

func TestBreaker_OpenRejectsWithoutInvoking(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb := breaker.New(
		breaker.WithFailureThreshold(1),
		breaker.WithRecoveryTimeout(time.Minute),
		breaker.WithClock(clock.Now),
	)
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	require.Equal(t, breaker.StateOpen, cb.State())

	invoked := false
	err := cb.Execute(ctx, func(ctx context.Context) error {
		invoked = true
		return nil
	})
	require.ErrorIs(t, err, breaker.ErrOpen)
	assert.False(t, invoked, "operation must not run while circuit is open")
}

func TestBreaker_HalfOpenProbeSuccessCloses(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb := breaker.New(
		breaker.WithFailureThreshold(1),
		breaker.WithRecoveryTimeout(time.Minute),
		breaker.WithClock(clock.Now),
	)
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	require.Equal(t, breaker.StateOpen, cb.State())

	clock.Advance(time.Minute + time.Second)
	assert.Equal(t, breaker.StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb := breaker.New(
		breaker.WithFailureThreshold(1),
		breaker.WithRecoveryTimeout(time.Minute),
		breaker.WithClock(clock.Now),
	)
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	clock.Advance(time.Minute + time.Second)

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	assert.Equal(t, breaker.StateOpen, cb.State())

	// The reopened circuit rejects again until the timeout elapses.
	require.ErrorIs(t, cb.Execute(ctx, succeeding), breaker.ErrOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	cb := breaker.New(breaker.WithFailureThreshold(2))
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	require.NoError(t, cb.Execute(ctx, succeeding))
	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)

	// Two failures were never consecutive, circuit stays closed.
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_SuccessThresholdAboveOne(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	cb := breaker.New(
		breaker.WithFailureThreshold(1),
		breaker.WithSuccessThreshold(2),
		breaker.WithRecoveryTimeout(time.Minute),
		breaker.WithClock(clock.Now),
	)
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errProvider)
	clock.Advance(2 * time.Minute)

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, breaker.StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, breaker.StateClosed, cb.State())
}

func TestBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb := breaker.New(breaker.WithFailureThreshold(1))
	require.ErrorIs(t, cb.Execute(context.Background(), failing), errProvider)
	require.Equal(t, breaker.StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, breaker.StateClosed, cb.State())
	assert.Equal(t, 0, cb.Stats().Failures)
}

func TestBreaker_NilOperation(t *testing.T) {
	t.Parallel()

	cb := breaker.New()
	err := cb.Execute(context.Background(), nil)
	require.ErrorIs(t, err, breaker.ErrNilOperation)
}
