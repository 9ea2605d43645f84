package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyq/pkg/notification"
	"github.com/dmitrymomot/notifyq/pkg/ttlcache"
)

type countingLoader struct {
	mu    sync.Mutex
	calls int
	prefs map[string][]notification.Preferences
	err   error
}

func (l *countingLoader) load(_ context.Context, userID string) ([]notification.Preferences, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.prefs[userID], nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestNewPreferencesCache(t *testing.T) {
	t.Parallel()

	_, err := notification.NewPreferencesCache(nil)
	require.Error(t, err)
}

func TestPreferencesCacheGet(t *testing.T) {
	t.Parallel()

	prefs := []notification.Preferences{
		{UserID: "u1", Type: notification.TypeMessageReceived, Channel: notification.ChannelPush, Enabled: true},
	}

	t.Run("serves from cache after first load", func(t *testing.T) {
		t.Parallel()

		loader := &countingLoader{prefs: map[string][]notification.Preferences{"u1": prefs}}
		cache, err := notification.NewPreferencesCache(loader.load)
		require.NoError(t, err)

		for range 3 {
			got, err := cache.Get(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, prefs, got)
		}
		assert.Equal(t, 1, loader.count())
	})

	t.Run("reloads after TTL expiry", func(t *testing.T) {
		t.Parallel()

		clock := newFakeClock()
		loader := &countingLoader{prefs: map[string][]notification.Preferences{"u1": prefs}}
		cache, err := notification.NewPreferencesCache(loader.load,
			ttlcache.WithDefaultTTL[string, []notification.Preferences](time.Minute),
			ttlcache.WithClock[string, []notification.Preferences](clock.Now),
		)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "u1")
		require.NoError(t, err)

		clock.Advance(2 * time.Minute)

		_, err = cache.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, loader.count())
	})

	t.Run("loader errors are not cached", func(t *testing.T) {
		t.Parallel()

		loadErr := errors.New("db down")
		loader := &countingLoader{err: loadErr}
		cache, err := notification.NewPreferencesCache(loader.load)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "u1")
		assert.ErrorIs(t, err, loadErr)

		_, err = cache.Get(context.Background(), "u1")
		assert.ErrorIs(t, err, loadErr)
		assert.Equal(t, 2, loader.count())
	})

	t.Run("empty user id rejected", func(t *testing.T) {
		t.Parallel()

		loader := &countingLoader{}
		cache, err := notification.NewPreferencesCache(loader.load)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "")
		assert.ErrorIs(t, err, notification.ErrUserIDRequired)
	})

	t.Run("invalidate forces reload", func(t *testing.T) {
		t.Parallel()

		loader := &countingLoader{prefs: map[string][]notification.Preferences{"u1": prefs}}
		cache, err := notification.NewPreferencesCache(loader.load)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "u1")
		require.NoError(t, err)

		cache.Invalidate("u1")

		_, err = cache.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, loader.count())
	})
}

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
