// Package dispatch implements a priority delivery queue for notifications.
//
// A Queue buffers notification.CreateNotification values and drains them
// with a single background worker. Items are kept sorted by priority rank
// (urgent first, FIFO within a tier), dispatched in batches under a
// per-minute rate budget, and routed to channel-specific senders: push
// notifications are grouped per user, emails per template, SMS messages
// go out sequentially with a small interval, and in-app notifications
// are delivered as one batch.
//
// Failed sends are retried by pushing the affected items back to the
// front of the buffer; items that exhaust their retry budget are handed
// to an optional drop handler and counted in metrics. All provider calls
// are timeboxed, and an optional circuit breaker guards them as a group.
//
// Usage:
//
//	q := dispatch.New(dispatch.Senders{
//		Push:  pushSender,
//		Email: emailSender,
//	},
//		dispatch.WithRateLimit(120),
//		dispatch.WithMonitor(monitor),
//	)
//	defer q.Stop()
//
//	accepted, err := q.Enqueue(ctx, items...)
package dispatch
