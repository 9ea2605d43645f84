package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory store for rate limiting supporting both
// fixed-window buckets and sliding timestamp windows.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	windows map[string]*timestampWindow

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type bucket struct {
	count     int64
	expiresAt time.Time
}

type timestampWindow struct {
	timestamps []time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the sweep interval for expired entries.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// NewMemoryStore creates an in-memory store with a background cleanup
// loop. Call Close to stop the loop.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		buckets:         make(map[string]*bucket),
		windows:         make(map[string]*timestampWindow),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.cleanupLoop()

	return s
}

// IncrementAndGet atomically increments the fixed-window counter.
func (s *MemoryStore) IncrementAndGet(ctx context.Context, key string, incr int, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	b, exists := s.buckets[key]

	// Create new bucket or reset if expired
	if !exists || now.After(b.expiresAt) {
		b = &bucket{
			count:     int64(incr),
			expiresAt: now.Add(window),
		}
		s.buckets[key] = b
		return b.count, window, nil
	}

	b.count += int64(incr)
	return b.count, time.Until(b.expiresAt), nil
}

// Get returns the current fixed-window counter value.
func (s *MemoryStore) Get(ctx context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.buckets[key]
	if !exists {
		return 0, 0, nil
	}

	now := time.Now()
	if now.After(b.expiresAt) {
		return 0, 0, nil
	}

	return b.count, time.Until(b.expiresAt), nil
}

// Delete removes the key from both stores.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.buckets, key)
	delete(s.windows, key)
	return nil
}

// RecordIfAllowed atomically checks the sliding window and records the
// timestamps when the limit permits.
func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit, n int) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.windows[key]
	if !exists {
		w = &timestampWindow{}
		s.windows[key] = w
	}

	cutoff := timestamp.Add(-window)
	live := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	w.timestamps = live

	if len(w.timestamps)+n > limit {
		return false, int64(len(w.timestamps)), nil
	}

	for i := 0; i < n; i++ {
		w.timestamps = append(w.timestamps, timestamp)
	}
	return true, int64(len(w.timestamps)), nil
}

// CountInWindow returns the number of live timestamps, pruning expired ones.
func (s *MemoryStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.windows[key]
	if !exists {
		return 0, nil
	}

	cutoff := time.Now().Add(-window)
	live := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	w.timestamps = live

	return int64(len(w.timestamps)), nil
}

// cleanupLoop runs periodically to remove expired entries.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

// cleanup removes expired buckets and empty windows.
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	for key, b := range s.buckets {
		if now.After(b.expiresAt) {
			delete(s.buckets, key)
		}
	}

	for key, w := range s.windows {
		if len(w.timestamps) == 0 {
			delete(s.windows, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}
