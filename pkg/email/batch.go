package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/notifyq/pkg/notification"
)

// RecipientResolver maps a user ID to a deliverable email address.
// Implementations typically look the address up in the user store.
type RecipientResolver func(ctx context.Context, userID string) (string, error)

// BatchSender groups notifications sharing one template into per-user
// digest emails. Each user in the batch receives a single email listing
// all of their notifications, keeping inbox noise proportional to users
// rather than events.
type BatchSender struct {
	sender  Sender
	resolve RecipientResolver
	digest  DigestComponent
}

// BatchOption configures a BatchSender.
type BatchOption func(*BatchSender)

// WithDigestComponent replaces the default digest layout.
func WithDigestComponent(fn DigestComponent) BatchOption {
	return func(b *BatchSender) {
		if fn != nil {
			b.digest = fn
		}
	}
}

// NewBatchSender creates a BatchSender delivering through the given
// Sender. Both sender and resolver are required.
func NewBatchSender(sender Sender, resolve RecipientResolver, opts ...BatchOption) (*BatchSender, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is required", ErrInvalidConfig)
	}
	if resolve == nil {
		return nil, fmt.Errorf("%w: recipient resolver is required", ErrInvalidConfig)
	}

	b := &BatchSender{
		sender:  sender,
		resolve: resolve,
		digest:  Digest,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// SendBatch sends one digest email per user appearing in items.
// Recipients that cannot be resolved, and sends that fail, are collected;
// the method delivers to every resolvable user before reporting errors.
func (b *BatchSender) SendBatch(ctx context.Context, tmpl notification.Type, items []notification.CreateNotification) error {
	if len(items) == 0 {
		return nil
	}

	byUser := make(map[string][]notification.CreateNotification)
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := byUser[item.UserID]; !ok {
			order = append(order, item.UserID)
		}
		byUser[item.UserID] = append(byUser[item.UserID], item)
	}

	var errs []error
	for _, userID := range order {
		userItems := byUser[userID]

		addr, err := b.resolve(ctx, userID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %v", ErrNoRecipient, userID, err))
			continue
		}

		body, err := Render(ctx, b.digest(DigestParams{
			Heading: digestHeading(tmpl),
			Items:   userItems,
		}))
		if err != nil {
			errs = append(errs, fmt.Errorf("render digest for user %s: %w", userID, err))
			continue
		}

		params := Params{
			SendTo:   addr,
			Subject:  digestSubject(tmpl, userItems),
			BodyHTML: body,
			Tag:      string(tmpl),
		}
		if err := b.sender.Send(ctx, params); err != nil {
			errs = append(errs, fmt.Errorf("send to user %s: %w", userID, err))
		}
	}

	return errors.Join(errs...)
}

// digestSubject uses the single notification's title when there is one,
// falling back to a count summary for multi-item digests.
func digestSubject(t notification.Type, items []notification.CreateNotification) string {
	if len(items) == 1 {
		return items[0].Title
	}
	label := strings.ReplaceAll(string(t), "_", " ")
	return fmt.Sprintf("You have %d %s notifications", len(items), label)
}

func digestHeading(t notification.Type) string {
	heading := strings.ReplaceAll(string(t), "_", " ")
	if heading != "" {
		heading = strings.ToUpper(heading[:1]) + heading[1:]
	}
	return heading
}
