// Package notification defines the notification domain model for a
// freelancing platform and the pure rules applied to it: priority
// classification, channel selection, quiet hours, throttling,
// deduplication, content truncation, stats aggregation and export.
//
// The package also defines the Storage interface with an in-memory
// implementation for development and a Postgres implementation for
// durable notification history.
//
// # Basic usage
//
//	n := notification.CreateNotification{
//	    UserID:   "user_42",
//	    Type:     notification.TypeDisputeOpened,
//	    Channel:  notification.ChannelPush,
//	    Priority: notification.ClassifyPriority(notification.TypeDisputeOpened, notification.PriorityContext{}),
//	    Title:    "Dispute opened",
//	    Content:  "A client opened a dispute on contract #1042",
//	}
//
//	items := notification.Deduplicate([]notification.CreateNotification{n, n})
//	// items has one element
//
// # Aggregates
//
// Stats and Engagement are derived read models computed on demand from
// a notification collection; they are never persisted.
package notification
