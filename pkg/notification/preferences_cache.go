package notification

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/notifyq/pkg/ttlcache"
)

// PreferencesLoader fetches a user's preference rows from the backing
// store.
type PreferencesLoader func(ctx context.Context, userID string) ([]Preferences, error)

// PreferencesCache is a read-through cache over a PreferencesLoader.
// Preference lookups happen on every dispatch decision while the rows
// change rarely, so entries are served from memory for the cache TTL
// (5 minutes by default) before the loader is consulted again.
type PreferencesCache struct {
	cache *ttlcache.Cache[string, []Preferences]
	load  PreferencesLoader
}

// NewPreferencesCache creates a cache backed by the given loader.
func NewPreferencesCache(load PreferencesLoader, opts ...ttlcache.Option[string, []Preferences]) (*PreferencesCache, error) {
	if load == nil {
		return nil, fmt.Errorf("preferences loader is required")
	}
	return &PreferencesCache{
		cache: ttlcache.New(opts...),
		load:  load,
	}, nil
}

// Get returns the user's preferences, loading and caching them on a
// miss. Loader errors are not cached.
func (c *PreferencesCache) Get(ctx context.Context, userID string) ([]Preferences, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if prefs, ok := c.cache.Get(userID); ok {
		return prefs, nil
	}

	prefs, err := c.load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences for user %s: %w", userID, err)
	}
	c.cache.Set(userID, prefs)
	return prefs, nil
}

// Invalidate drops the cached entry, forcing a reload on the next Get.
// Call it after a preference update.
func (c *PreferencesCache) Invalidate(userID string) {
	c.cache.Delete(userID)
}

// Cleanup sweeps expired entries and reports how many were removed.
func (c *PreferencesCache) Cleanup() int {
	return c.cache.Cleanup()
}
