package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrymomot/notifyq/pkg/notification"
)

// PushSender delivers a batch of push notifications to one user's devices.
type PushSender interface {
	SendBatch(ctx context.Context, userID string, items []notification.CreateNotification) error
}

// EmailSender delivers all notifications sharing one template, typically
// as a per-user digest.
type EmailSender interface {
	SendBatch(ctx context.Context, template notification.Type, items []notification.CreateNotification) error
}

// SMSSender delivers a single SMS notification.
type SMSSender interface {
	Send(ctx context.Context, item notification.CreateNotification) error
}

// InAppSender persists a batch of in-app notifications.
type InAppSender interface {
	SendBatch(ctx context.Context, items []notification.CreateNotification) error
}

// Senders bundles the per-channel providers. Nil fields are replaced
// with no-op implementations, so a Queue can be constructed with only
// the channels an application actually uses.
type Senders struct {
	Push  PushSender
	Email EmailSender
	SMS   SMSSender
	InApp InAppSender
}

func (s Senders) withDefaults() Senders {
	if s.Push == nil {
		s.Push = NoOpPushSender{}
	}
	if s.Email == nil {
		s.Email = NoOpEmailSender{}
	}
	if s.SMS == nil {
		s.SMS = NoOpSMSSender{}
	}
	if s.InApp == nil {
		s.InApp = NoOpInAppSender{}
	}
	return s
}

// NoOpPushSender discards push notifications.
type NoOpPushSender struct{}

func (NoOpPushSender) SendBatch(context.Context, string, []notification.CreateNotification) error {
	return nil
}

// NoOpEmailSender discards email notifications.
type NoOpEmailSender struct{}

func (NoOpEmailSender) SendBatch(context.Context, notification.Type, []notification.CreateNotification) error {
	return nil
}

// NoOpSMSSender discards SMS notifications.
type NoOpSMSSender struct{}

func (NoOpSMSSender) Send(context.Context, notification.CreateNotification) error { return nil }

// NoOpInAppSender discards in-app notifications.
type NoOpInAppSender struct{}

func (NoOpInAppSender) SendBatch(context.Context, []notification.CreateNotification) error {
	return nil
}

// HTTPPushSender posts push batches as JSON to a delivery gateway.
// The client is reused across requests for connection pooling.
type HTTPPushSender struct {
	endpoint string
	client   *http.Client
}

// NewHTTPPushSender creates a push sender targeting the given gateway URL.
// Pass a nil client to use a pooled default.
func NewHTTPPushSender(endpoint string, client *http.Client) *HTTPPushSender {
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &HTTPPushSender{endpoint: endpoint, client: client}
}

type pushPayload struct {
	UserID        string                            `json:"user_id"`
	Notifications []notification.CreateNotification `json:"notifications"`
}

// SendBatch posts the user's notifications to the gateway and treats any
// non-2xx response as a failure.
func (s *HTTPPushSender) SendBatch(ctx context.Context, userID string, items []notification.CreateNotification) error {
	if len(items) == 0 {
		return nil
	}

	body, err := json.Marshal(pushPayload{UserID: userID, Notifications: items})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver push batch: %w", err)
	}
	defer func() {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}
	return nil
}
