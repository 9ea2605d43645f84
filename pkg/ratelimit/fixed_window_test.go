package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyq/pkg/ratelimit"
)

func newTestStore(t *testing.T) *ratelimit.MemoryStore {
	t.Helper()
	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewFixedWindow_Validation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := ratelimit.NewFixedWindow(nil, 10, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.NewFixedWindow(store, 0, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.NewFixedWindow(store, 10, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
}

func TestFixedWindow_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 3, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
	}

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Positive(t, res.RetryAfter())
}

func TestFixedWindow_BucketResetsAfterWindow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 1, 50*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, res.Allowed)

	time.Sleep(60 * time.Millisecond)

	res, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindow_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	res, err := limiter.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = limiter.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindow_StatusDoesNotConsume(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 2, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		res, err := limiter.Status(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2, res.Remaining)
	}
}

func TestFixedWindow_Reset(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 1, time.Minute)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, limiter.Reset(ctx, "k"))

	res, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindow_EmptyKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	limiter, err := ratelimit.NewFixedWindow(store, 1, time.Minute)
	require.NoError(t, err)

	_, err = limiter.Allow(context.Background(), "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}
