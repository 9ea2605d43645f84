package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/notifyq/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("wraps a non-nil error", func(t *testing.T) {
		t.Parallel()

		attr := logger.Error(errors.New("boom"))
		assert.Equal(t, "error", attr.Key)
		assert.Equal(t, "boom", attr.Value.String())
	})

	t.Run("nil error yields empty attr", func(t *testing.T) {
		t.Parallel()

		assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	})
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("skips nil entries", func(t *testing.T) {
		t.Parallel()

		attr := logger.Errors(errors.New("a"), nil, errors.New("b"))
		assert.Equal(t, "errors", attr.Key)
		assert.Len(t, attr.Value.Group(), 2)
	})

	t.Run("all nil yields empty attr", func(t *testing.T) {
		t.Parallel()

		assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
	})
}

func TestDomainAttrs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{name: "user id", attr: logger.UserID("u1"), key: "user_id", want: "u1"},
		{name: "notification id", attr: logger.NotificationID("n1"), key: "notification_id", want: "n1"},
		{name: "channel", attr: logger.Channel("push"), key: "channel", want: "push"},
		{name: "type", attr: logger.NotificationType("payment_received"), key: "type", want: "payment_received"},
		{name: "component", attr: logger.Component("dispatch"), key: "component", want: "dispatch"},
		{name: "event", attr: logger.Event("batch_sent"), key: "event", want: "batch_sent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}

	assert.Equal(t, int64(50), logger.BatchSize(50).Value.Int64())
	assert.Equal(t, int64(2), logger.RetryCount(2).Value.Int64())
}
