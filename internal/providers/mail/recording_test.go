package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/pinobite/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingMailerFailures(t *testing.T) {
	m := NewRecordingMailer()
	m.FailNext(errors.New("relay down"))

	msg := types.Message{To: "ana@example.com", Subject: "hi", Text: "hello"}
	assert.Error(t, m.Send(context.Background(), msg))
	require.NoError(t, m.Send(context.Background(), msg))

	assert.Equal(t, 2, m.Attempts())
	assert.Equal(t, []types.Message{msg}, m.Sent())
}

func TestNewSMTPMailer(t *testing.T) {
	t.Setenv("TEST_SMTP_PASSWORD", "app-password")

	m, err := NewSMTPMailer("smtp.example.com", 587, "shop@example.com", "TEST_SMTP_PASSWORD", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "app-password", m.password)
	assert.Equal(t, "shop@example.com", m.from)
	assert.Equal(t, "smtp:smtp.example.com:587", m.Name())

	_, err = NewSMTPMailer("", 587, "", "", "", "", 0)
	assert.Error(t, err)
}
