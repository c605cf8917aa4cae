package providers

import (
	"fmt"
	"log/slog"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/providers/mail"
	"github.com/pinobite/storefront/internal/providers/payment"
	"github.com/pinobite/storefront/internal/types"
)

// NewPaymentGateway creates a payment gateway based on configuration
func NewPaymentGateway(cfg *config.PaymentConfig) (types.PaymentGateway, error) {
	switch cfg.Provider {
	case "razorpay":
		return payment.NewRazorpayGateway(cfg.KeyID, cfg.KeySecretEnv, cfg.KeySecret, cfg.BaseURL, cfg.Timeout)
	case "mock":
		return payment.NewMockGateway(cfg.KeyID, cfg.KeySecret), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", cfg.Provider)
	}
}

// NewMailer creates a mailer based on configuration
func NewMailer(cfg *config.MailConfig, logger *slog.Logger) (types.Mailer, error) {
	switch cfg.Provider {
	case "smtp":
		return mail.NewSMTPMailer(cfg.Host, cfg.Port, cfg.Username, cfg.PasswordEnv, cfg.Password, cfg.From, cfg.Timeout)
	case "log":
		return mail.NewLogMailer(logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", cfg.Provider)
	}
}
