package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // userID -> notifications
	mu            sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.UserID == "" {
		return Notification{}, ErrUserIDRequired
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	return n, nil
}

func (s *MemoryStorage) Get(ctx context.Context, userID, id string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id {
			// Return a copy to prevent external mutation of stored data
			out := n
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.notifications[userID]
	if !exists {
		return []Notification{}, nil
	}

	var filtered []Notification
	for _, n := range stored {
		if n.IsExpired() {
			continue
		}
		if opts.OnlyUnread && n.IsRead {
			continue
		}
		if len(opts.Types) > 0 && !containsType(opts.Types, n.Type) {
			continue
		}
		if len(opts.Channels) > 0 && !containsChannel(opts.Channels, n.Channel) {
			continue
		}
		if opts.Since != nil && n.CreatedAt.Before(*opts.Since) {
			continue
		}
		filtered = append(filtered, n)
	}

	// Newest first; stable to keep insertion order for equal timestamps.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	start := opts.Offset
	if start > len(filtered) {
		return []Notification{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.notifications[userID]
	idSet := toSet(ids)
	for i := range stored {
		if idSet[stored[i].ID] {
			stored[i].MarkRead()
		}
	}
	return nil
}

func (s *MemoryStorage) MarkDismissed(ctx context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.notifications[userID]
	idSet := toSet(ids)
	for i := range stored {
		if idSet[stored[i].ID] {
			stored[i].MarkDismissed()
		}
	}
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, userID string, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.notifications[userID]
	if !exists {
		return nil
	}

	idSet := toSet(ids)
	var kept []Notification
	for _, n := range stored {
		if !idSet[n.ID] {
			kept = append(kept, n)
		}
	}
	s.notifications[userID] = kept
	return nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.IsRead && !n.IsExpired() {
			count++
		}
	}
	return count, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func containsType(ts []Type, t Type) bool {
	for _, candidate := range ts {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsChannel(chs []Channel, ch Channel) bool {
	for _, candidate := range chs {
		if candidate == ch {
			return true
		}
	}
	return false
}
