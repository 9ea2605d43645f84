package notification

import "time"

// Notification is the core domain model. Immutable once delivered except
// for the read/dismiss flags and their timestamps, which are set exactly
// once each.
type Notification struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Type        Type           `json:"type"`
	Channel     Channel        `json:"channel"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	ActionURL   string         `json:"action_url,omitempty"`
	ActionText  string         `json:"action_text,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsRead      bool           `json:"is_read"`
	IsDismissed bool           `json:"is_dismissed"`
	SentAt      *time.Time     `json:"sent_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	DismissedAt *time.Time     `json:"dismissed_at,omitempty"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// MarkRead sets the read flag and timestamp. Idempotent: the timestamp
// is set only on the first call.
func (n *Notification) MarkRead() {
	if n.IsRead {
		return
	}
	n.IsRead = true
	now := time.Now()
	n.ReadAt = &now
}

// MarkDismissed sets the dismissed flag and timestamp. Idempotent.
func (n *Notification) MarkDismissed() {
	if n.IsDismissed {
		return
	}
	n.IsDismissed = true
	now := time.Now()
	n.DismissedAt = &now
}

// CreateNotification is the construction-time subset of Notification:
// the unit enqueued into the dispatch queue. It carries no identity or
// lifecycle state; retry bookkeeping lives in the queue's own wrapper,
// never on this value.
type CreateNotification struct {
	UserID     string         `json:"user_id"`
	Type       Type           `json:"type"`
	Channel    Channel        `json:"channel"`
	Priority   Priority       `json:"priority"`
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	ActionURL  string         `json:"action_url,omitempty"`
	ActionText string         `json:"action_text,omitempty"`
	Icon       string         `json:"icon,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
}
