package notification

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a notification does not exist.
	ErrNotFound = errors.New("notification not found")

	// ErrUserIDRequired is returned when a notification lacks an owner.
	ErrUserIDRequired = errors.New("user ID is required")
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	// Create stores a new notification, generating an ID when empty.
	Create(ctx context.Context, n Notification) (Notification, error)

	// Get retrieves a single notification owned by userID.
	Get(ctx context.Context, userID, id string) (*Notification, error)

	// List returns notifications for a user, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead marks notification(s) as read.
	MarkRead(ctx context.Context, userID string, ids ...string) error

	// MarkDismissed marks notification(s) as dismissed.
	MarkDismissed(ctx context.Context, userID string, ids ...string) error

	// Delete removes notification(s).
	Delete(ctx context.Context, userID string, ids ...string) error

	// CountUnread returns the unread count for a user.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions provides filtering and pagination for List.
type ListOptions struct {
	Limit      int        // Maximum number of notifications to return (0 = no limit)
	Offset     int        // Number of notifications to skip for pagination
	OnlyUnread bool       // When true, only return unread notifications
	Types      []Type     // If set, only return notifications of these types
	Channels   []Channel  // If set, only return notifications on these channels
	Since      *time.Time // If set, only return notifications created after this time
}
