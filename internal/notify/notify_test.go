package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/models"
	"github.com/pinobite/storefront/internal/providers/mail"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOrder(status models.OrderStatus) models.Order {
	return models.Order{
		ID:          12,
		Email:       "ana@example.com",
		FirstName:   "Ana",
		Status:      status,
		Currency:    "INR",
		TotalAmount: decimal.NewFromInt(1020),
		Items: []models.OrderItem{
			{ProductName: "Super Muesli Nut & Seeds", Price: decimal.NewFromInt(510), Quantity: 2},
		},
	}
}

func TestRenderOrderStatus(t *testing.T) {
	tests := []struct {
		status  models.OrderStatus
		subject string
		phrase  string
	}{
		{models.OrderStatusProcessing, "Order #12 confirmed", "payment was successful"},
		{models.OrderStatusShipped, "Order #12 has shipped", "on its way"},
		{models.OrderStatusDelivered, "Order #12 delivered", "has been delivered"},
		{models.OrderStatusCancelled, "Order #12 cancelled", "has been cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			msg, err := Render(OrderStatusChanged{Order: testOrder(tt.status)})
			require.NoError(t, err)

			assert.Equal(t, "ana@example.com", msg.To)
			assert.Equal(t, tt.subject, msg.Subject)
			assert.Contains(t, msg.Text, tt.phrase)
			assert.Contains(t, msg.Text, "Hi Ana")
			assert.Contains(t, msg.Text, "Super Muesli Nut & Seeds x 2: 1020.00")
			assert.Contains(t, msg.Text, "Total: INR 1020.00")
			assert.Contains(t, msg.HTML, "Super Muesli Nut &amp; Seeds")
		})
	}
}

func TestRenderPasswordReset(t *testing.T) {
	msg, err := Render(PasswordResetRequested{Email: "admin@example.com", Name: "Ravi", Code: "123456", TTL: 5 * time.Minute})
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "Your password reset code", msg.Subject)
	assert.Contains(t, msg.Text, "123456")
	assert.Contains(t, msg.Text, "valid for 5 minutes")
}

func TestRenderVisitorSubmitted(t *testing.T) {
	msg, err := Render(VisitorSubmitted{
		Submission: models.VisitorSubmission{Name: "Meera", Email: "meera@example.com"},
		Form:       models.VisitorForm{EventName: "Bangalore Food Fest"},
	})
	require.NoError(t, err)

	assert.Equal(t, "meera@example.com", msg.To)
	assert.Equal(t, "Thanks for registering at Bangalore Food Fest", msg.Subject)
	assert.Contains(t, msg.HTML, "<strong>Bangalore Food Fest</strong>")
}

func newTestDispatcher(mailer *mail.RecordingMailer, attempts int) *Dispatcher {
	return NewDispatcher(mailer, config.MailConfig{
		QueueSize:    8,
		MaxAttempts:  attempts,
		RetryBackoff: time.Millisecond,
		Timeout:      time.Second,
	}, nil)
}

func TestDispatcherDeliversOnClose(t *testing.T) {
	mailer := mail.NewRecordingMailer()
	d := newTestDispatcher(mailer, 3)
	d.Start()

	d.Publish(OrderStatusChanged{Order: testOrder(models.OrderStatusShipped)})
	d.Publish(PasswordResetRequested{Email: "admin@example.com", Code: "654321", TTL: 5 * time.Minute})

	require.NoError(t, d.Close(context.Background()))

	sent := mailer.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Order #12 has shipped", sent[0].Subject)
	assert.Equal(t, "Your password reset code", sent[1].Subject)
}

func TestDispatcherRetries(t *testing.T) {
	mailer := mail.NewRecordingMailer()
	mailer.FailNext(errors.New("421 try again"), errors.New("421 try again"))

	d := newTestDispatcher(mailer, 3)
	d.Start()
	d.Publish(OrderStatusChanged{Order: testOrder(models.OrderStatusDelivered)})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 3, mailer.Attempts())
	assert.Len(t, mailer.Sent(), 1)
}

func TestDispatcherGivesUp(t *testing.T) {
	mailer := mail.NewRecordingMailer()
	mailer.FailNext(errors.New("down"), errors.New("down"), errors.New("down"))

	d := newTestDispatcher(mailer, 2)
	d.Start()
	d.Publish(OrderStatusChanged{Order: testOrder(models.OrderStatusCancelled)})
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, mailer.Attempts())
	assert.Empty(t, mailer.Sent())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	mailer := mail.NewRecordingMailer()
	d := NewDispatcher(mailer, config.MailConfig{QueueSize: 1, MaxAttempts: 1}, nil)

	// Not started, so the queue holds exactly one event.
	d.Publish(PasswordResetRequested{Email: "a@example.com", Code: "1"})
	d.Publish(PasswordResetRequested{Email: "b@example.com", Code: "2"})
	assert.Len(t, d.queue, 1)

	d.Start()
	require.NoError(t, d.Close(context.Background()))
	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, "a@example.com", mailer.Sent()[0].To)
}

func TestPublishAfterClose(t *testing.T) {
	mailer := mail.NewRecordingMailer()
	d := newTestDispatcher(mailer, 1)
	d.Start()
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		d.Publish(PasswordResetRequested{Email: "late@example.com", Code: "1"})
	})
	assert.Empty(t, mailer.Sent())
}
