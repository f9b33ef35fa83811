package mailer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"user_service/internal/config"
	"user_service/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func smtpConfig() config.Mail {
	return config.Mail{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    1, // nothing listens here
		From:    "no-reply@example.com",
		Subject: "Welcome aboard",
		Timeout: time.Second,
	}
}

func TestNew_Disabled(t *testing.T) {
	n, err := New(config.Mail{}, discardLogger())
	require.NoError(t, err)

	assert.IsType(t, NopNotifier{}, n)
	assert.NoError(t, n.NotifyUserCreated(context.Background(), models.User{Mail: "a@example.com"}))
}

func TestWelcomeMessage(t *testing.T) {
	n, err := New(smtpConfig(), discardLogger())
	require.NoError(t, err)

	smtp, ok := n.(*SMTPNotifier)
	require.True(t, ok)

	msg, err := smtp.welcomeMessage(models.User{ID: uuid.Must(uuid.NewV4()), Mail: "alice@example.com"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "no-reply@example.com")
	assert.Contains(t, raw, "Subject: Welcome aboard")
	assert.Contains(t, raw, "your account has been created")
}

func TestWelcomeMessage_InvalidRecipient(t *testing.T) {
	n, err := New(smtpConfig(), discardLogger())
	require.NoError(t, err)

	_, err = n.(*SMTPNotifier).welcomeMessage(models.User{Mail: "not an address"})
	require.Error(t, err)
}

func TestNotifyUserCreated_RelayDown(t *testing.T) {
	n, err := New(smtpConfig(), discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = n.NotifyUserCreated(ctx, models.User{Mail: "alice@example.com"})
	require.Error(t, err)
}
