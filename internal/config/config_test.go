package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, 5*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, 6, cfg.OTP.Length)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, 3, cfg.Mail.MaxAttempts)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_DB_DRIVER", "sqlite")
	t.Setenv("STOREFRONT_OTP_TTL", "10m")
	t.Setenv("STOREFRONT_PAYMENT_CURRENCY", "usd")

	cfg := Default()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 10*time.Minute, cfg.OTP.TTL)
	assert.Equal(t, "USD", cfg.Payment.Currency)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")

	cfg.Auth.Secret = "s3cret"
	cfg.Payment.Provider = "razorpay"
	require.NoError(t, cfg.Validate())

	cfg.Payment.Provider = "stripe"
	cfg.OTP.Length = 2
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported payment provider: stripe")
	assert.Contains(t, err.Error(), "otp.length")
}

func TestValidateMockPaymentNeedsDebug(t *testing.T) {
	cfg := Default()
	cfg.Auth.Secret = "s3cret"
	cfg.Payment.Provider = "mock"

	cfg.Log.Level = "info"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payment.provider mock")

	cfg.Log.Level = "debug"
	assert.NoError(t, cfg.Validate())
}
