package notification

import (
	"strings"
	"time"
)

// DefaultThrottleLimit caps same-kind notifications per user per hour.
const DefaultThrottleLimit = 5

// PriorityContext carries event details that influence classification.
type PriorityContext struct {
	// Severity of a security alert ("critical" escalates to urgent).
	Severity string
	// DaysLeft until a deadline; relevant for deadline reminders.
	DaysLeft int
}

// ClassifyPriority maps a notification type and its context to a
// delivery priority using a fixed classification table.
func ClassifyPriority(t Type, ctx PriorityContext) Priority {
	switch t {
	case TypeSecurityAlert:
		if ctx.Severity == "critical" {
			return PriorityUrgent
		}
		return PriorityHigh
	case TypeDisputeOpened, TypePaymentReceived:
		return PriorityHigh
	case TypeDeadlineReminder:
		if ctx.DaysLeft <= 1 {
			return PriorityHigh
		}
		return PriorityNormal
	case TypeSystemAnnouncement, TypeProfileVerified:
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// ShouldThrottle reports whether sending one more notification of the
// given (user, type, channel) combination would exceed limit within the
// trailing hour, counting against history. SentAt is consulted when
// set, CreatedAt otherwise.
func ShouldThrottle(history []Notification, userID string, t Type, ch Channel, limit int, now time.Time) bool {
	if limit <= 0 {
		limit = DefaultThrottleLimit
	}

	cutoff := now.Add(-time.Hour)
	count := 0
	for i := range history {
		n := &history[i]
		if n.UserID != userID || n.Type != t || n.Channel != ch {
			continue
		}
		at := n.CreatedAt
		if n.SentAt != nil {
			at = *n.SentAt
		}
		if at.After(cutoff) {
			count++
			if count >= limit {
				return true
			}
		}
	}
	return false
}

// Deduplicate drops repeated notifications keyed on (user, type,
// content), keeping the first occurrence in input order. Idempotent.
func Deduplicate(items []CreateNotification) []CreateNotification {
	seen := make(map[string]struct{}, len(items))
	out := make([]CreateNotification, 0, len(items))
	for _, item := range items {
		key := item.UserID + "\x00" + string(item.Type) + "\x00" + item.Content
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// TruncateContent shortens s to at most max runes plus an ellipsis.
// The cut happens at the nearest preceding space when that space sits at
// 80% of max or later; otherwise the content is cut hard at max.
func TruncateContent(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := runes[:max]
	if idx := lastSpace(cut); idx >= max*8/10 {
		cut = cut[:idx]
	}
	return strings.TrimRight(string(cut), " ") + "..."
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == ' ' {
			return i
		}
	}
	return -1
}
