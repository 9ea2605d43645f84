// Package email provides a provider-agnostic sender for transactional
// email with a Postmark implementation for production and a development
// sender that writes messages to disk.
//
// BatchSender adapts the low-level Sender to the notification dispatch
// queue: a channel group of notifications sharing one template is
// rendered into a single digest email per recipient.
//
//	sender, err := email.NewPostmarkClient(cfg)
//	if err != nil { ... }
//
//	batch, err := email.NewBatchSender(sender, resolver)
//	if err != nil { ... }
//
//	queue := dispatch.New(dispatch.Senders{Email: batch})
//
// The resolver maps a user ID to an email address; typically backed by
// the application's user store.
package email
