package email_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyq/pkg/email"
	"github.com/dmitrymomot/notifyq/pkg/notification"
)

// recordingSender captures every send for assertions.
type recordingSender struct {
	mu    sync.Mutex
	sent  []email.Params
	fails map[string]error // keyed by recipient
}

func (r *recordingSender) Send(ctx context.Context, params email.Params) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fails[params.SendTo]; ok {
		return err
	}
	r.sent = append(r.sent, params)
	return nil
}

func staticResolver(addrs map[string]string) email.RecipientResolver {
	return func(ctx context.Context, userID string) (string, error) {
		addr, ok := addrs[userID]
		if !ok {
			return "", fmt.Errorf("unknown user %s", userID)
		}
		return addr, nil
	}
}

func TestNewBatchSender(t *testing.T) {
	t.Parallel()

	t.Run("requires sender", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewBatchSender(nil, staticResolver(nil))
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("requires resolver", func(t *testing.T) {
		t.Parallel()

		_, err := email.NewBatchSender(&recordingSender{}, nil)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestBatchSenderSendBatch(t *testing.T) {
	t.Parallel()

	t.Run("groups notifications per user into one digest", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		bs, err := email.NewBatchSender(rec, staticResolver(map[string]string{
			"u1": "alice@example.com",
			"u2": "bob@example.com",
		}))
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{UserID: "u1", Type: notification.TypePaymentReceived, Title: "Payment of $100", Content: "From Acme"},
			{UserID: "u2", Type: notification.TypePaymentReceived, Title: "Payment of $50", Content: "From Beta"},
			{UserID: "u1", Type: notification.TypePaymentReceived, Title: "Payment of $25", Content: "From Gamma"},
		}

		require.NoError(t, bs.SendBatch(context.Background(), notification.TypePaymentReceived, items))
		require.Len(t, rec.sent, 2)

		byAddr := make(map[string]email.Params)
		for _, p := range rec.sent {
			byAddr[p.SendTo] = p
		}

		alice := byAddr["alice@example.com"]
		assert.Contains(t, alice.BodyHTML, "Payment of $100")
		assert.Contains(t, alice.BodyHTML, "Payment of $25")
		assert.Equal(t, "You have 2 payment received notifications", alice.Subject)
		assert.Equal(t, string(notification.TypePaymentReceived), alice.Tag)

		bob := byAddr["bob@example.com"]
		assert.Contains(t, bob.BodyHTML, "Payment of $50")
		assert.Equal(t, "Payment of $50", bob.Subject)
	})

	t.Run("includes action link when present", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		bs, err := email.NewBatchSender(rec, staticResolver(map[string]string{"u1": "alice@example.com"}))
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{
				UserID:     "u1",
				Type:       notification.TypeContractCreated,
				Title:      "New contract",
				Content:    "Acme sent you a contract",
				ActionURL:  "https://example.com/contracts/42",
				ActionText: "Review contract",
			},
		}

		require.NoError(t, bs.SendBatch(context.Background(), notification.TypeContractCreated, items))
		require.Len(t, rec.sent, 1)
		assert.Contains(t, rec.sent[0].BodyHTML, "https://example.com/contracts/42")
		assert.Contains(t, rec.sent[0].BodyHTML, "Review contract")
	})

	t.Run("escapes notification content in the digest", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		bs, err := email.NewBatchSender(rec, staticResolver(map[string]string{"u1": "alice@example.com"}))
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{
				UserID:  "u1",
				Type:    notification.TypeMessageReceived,
				Title:   `<script>alert("x")</script>`,
				Content: "a < b & c",
			},
		}

		require.NoError(t, bs.SendBatch(context.Background(), notification.TypeMessageReceived, items))
		require.Len(t, rec.sent, 1)
		assert.NotContains(t, rec.sent[0].BodyHTML, "<script>")
		assert.Contains(t, rec.sent[0].BodyHTML, "&lt;script&gt;")
		assert.Contains(t, rec.sent[0].BodyHTML, "a &lt; b &amp; c")
	})

	t.Run("custom digest component replaces the layout", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		custom := func(p email.DigestParams) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				_, err := fmt.Fprintf(w, "<p>custom digest with %d items</p>", len(p.Items))
				return err
			})
		}
		bs, err := email.NewBatchSender(rec,
			staticResolver(map[string]string{"u1": "alice@example.com"}),
			email.WithDigestComponent(custom),
		)
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{UserID: "u1", Type: notification.TypeMessageReceived, Title: "a", Content: "c"},
			{UserID: "u1", Type: notification.TypeMessageReceived, Title: "b", Content: "c"},
		}

		require.NoError(t, bs.SendBatch(context.Background(), notification.TypeMessageReceived, items))
		require.Len(t, rec.sent, 1)
		assert.Equal(t, "<p>custom digest with 2 items</p>", rec.sent[0].BodyHTML)
	})

	t.Run("continues past unresolvable recipients", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		bs, err := email.NewBatchSender(rec, staticResolver(map[string]string{"u2": "bob@example.com"}))
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{UserID: "u1", Type: notification.TypeMessageReceived, Title: "Hi", Content: "hello"},
			{UserID: "u2", Type: notification.TypeMessageReceived, Title: "Hey", Content: "hello"},
		}

		err = bs.SendBatch(context.Background(), notification.TypeMessageReceived, items)
		require.Error(t, err)
		assert.ErrorIs(t, err, email.ErrNoRecipient)
		assert.Contains(t, err.Error(), "u1")
		require.Len(t, rec.sent, 1)
		assert.Equal(t, "bob@example.com", rec.sent[0].SendTo)
	})

	t.Run("collects send failures", func(t *testing.T) {
		t.Parallel()

		sendErr := errors.New("smtp down")
		rec := &recordingSender{fails: map[string]error{"alice@example.com": sendErr}}
		bs, err := email.NewBatchSender(rec, staticResolver(map[string]string{
			"u1": "alice@example.com",
			"u2": "bob@example.com",
		}))
		require.NoError(t, err)

		items := []notification.CreateNotification{
			{UserID: "u1", Type: notification.TypeMessageReceived, Title: "Hi", Content: "hello"},
			{UserID: "u2", Type: notification.TypeMessageReceived, Title: "Hey", Content: "hello"},
		}

		err = bs.SendBatch(context.Background(), notification.TypeMessageReceived, items)
		require.Error(t, err)
		assert.ErrorIs(t, err, sendErr)
		require.Len(t, rec.sent, 1)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		t.Parallel()

		rec := &recordingSender{}
		bs, err := email.NewBatchSender(rec, staticResolver(nil))
		require.NoError(t, err)

		require.NoError(t, bs.SendBatch(context.Background(), notification.TypeMessageReceived, nil))
		assert.Empty(t, rec.sent)
	})
}
