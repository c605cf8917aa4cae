package providers

import (
	"testing"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/providers/mail"
	"github.com/pinobite/storefront/internal/providers/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentGateway(t *testing.T) {
	cfg := config.Default()

	gw, err := NewPaymentGateway(&cfg.Payment)
	require.NoError(t, err)
	assert.IsType(t, &payment.MockGateway{}, gw)

	cfg.Payment.Provider = "razorpay"
	cfg.Payment.KeyID = "rzp_test_key"
	cfg.Payment.KeySecret = "s3cret"
	gw, err = NewPaymentGateway(&cfg.Payment)
	require.NoError(t, err)
	assert.Equal(t, "rzp_test_key", gw.KeyID())

	cfg.Payment.Provider = "paypal"
	_, err = NewPaymentGateway(&cfg.Payment)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	cfg := config.Default()

	m, err := NewMailer(&cfg.Mail, nil)
	require.NoError(t, err)
	assert.IsType(t, &mail.LogMailer{}, m)

	cfg.Mail.Provider = "smtp"
	m, err = NewMailer(&cfg.Mail, nil)
	require.NoError(t, err)
	assert.IsType(t, &mail.SMTPMailer{}, m)

	cfg.Mail.Provider = "carrier-pigeon"
	_, err = NewMailer(&cfg.Mail, nil)
	assert.Error(t, err)
}
