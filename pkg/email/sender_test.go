package email_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifyq/pkg/email"
)

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	valid := email.Params{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>Hi</p>",
	}

	tests := []struct {
		name    string
		mutate  func(*email.Params)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *email.Params) {}, wantErr: false},
		{name: "missing recipient", mutate: func(p *email.Params) { p.SendTo = "" }, wantErr: true},
		{name: "malformed recipient", mutate: func(p *email.Params) { p.SendTo = "not-an-email" }, wantErr: true},
		{name: "recipient without domain dot", mutate: func(p *email.Params) { p.SendTo = "user@localhost" }, wantErr: true},
		{name: "missing subject", mutate: func(p *email.Params) { p.Subject = "" }, wantErr: true},
		{name: "missing body", mutate: func(p *email.Params) { p.BodyHTML = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			params := valid
			tt.mutate(&params)

			err := params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, email.ErrInvalidParams)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewPostmarkClientValidation(t *testing.T) {
	t.Parallel()

	valid := email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "noreply@example.com",
		SupportEmail:         "support@example.com",
	}

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		sender, err := email.NewPostmarkClient(valid)
		require.NoError(t, err)
		assert.NotNil(t, sender)
	})

	t.Run("missing server token", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.PostmarkServerToken = ""
		_, err := email.NewPostmarkClient(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("missing account token", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.PostmarkAccountToken = ""
		_, err := email.NewPostmarkClient(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid sender email", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.SenderEmail = "bad"
		_, err := email.NewPostmarkClient(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("invalid support email", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.SupportEmail = "bad"
		_, err := email.NewPostmarkClient(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	t.Run("writes html and metadata files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.Send(context.Background(), email.Params{
			SendTo:   "user@example.com",
			Subject:  "Payment received",
			BodyHTML: "<p>You got paid</p>",
			Tag:      "payment_received",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		var htmlFile, jsonFile string
		for _, e := range entries {
			switch filepath.Ext(e.Name()) {
			case ".html":
				htmlFile = e.Name()
			case ".json":
				jsonFile = e.Name()
			}
		}
		require.NotEmpty(t, htmlFile)
		require.NotEmpty(t, jsonFile)
		assert.Contains(t, htmlFile, "payment_received")

		body, err := os.ReadFile(filepath.Join(dir, htmlFile))
		require.NoError(t, err)
		assert.Equal(t, "<p>You got paid</p>", string(body))

		meta, err := os.ReadFile(filepath.Join(dir, jsonFile))
		require.NoError(t, err)
		assert.Contains(t, string(meta), "user@example.com")
		assert.Contains(t, string(meta), "Payment received")
	})

	t.Run("sanitizes subject into filename", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.Send(context.Background(), email.Params{
			SendTo:   "user@example.com",
			Subject:  "Hello / World: review?",
			BodyHTML: "<p>hi</p>",
		})
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.ContainsAny(e.Name(), "/:? "), "unsafe filename %q", e.Name())
		}
	})

	t.Run("rejects invalid params", func(t *testing.T) {
		t.Parallel()

		sender := email.NewDevSender(t.TempDir())
		err := sender.Send(context.Background(), email.Params{SendTo: "nope"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)
	})
}
