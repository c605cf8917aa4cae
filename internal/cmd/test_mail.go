package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/logging"
	"github.com/pinobite/storefront/internal/providers"
	"github.com/pinobite/storefront/internal/types"
	"github.com/spf13/cobra"
)

var testMailTo string

var testMailCmd = &cobra.Command{
	Use:   "test-mail",
	Short: "Send a test email through the configured mailer",
	Long: `Sends one message through the configured mail provider. This helps
verify SMTP credentials before customers depend on order emails.`,
	RunE: testMailer,
}

func init() {
	rootCmd.AddCommand(testMailCmd)

	testMailCmd.Flags().StringVar(&testMailTo, "to", "", "Recipient address (required)")
	_ = testMailCmd.MarkFlagRequired("to")
}

func testMailer(cmd *cobra.Command, args []string) error {
	fmt.Println("🧪 Testing mail provider...")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Setup(cfg.Log)

	mailer, err := providers.NewMailer(&cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}
	fmt.Printf("✉️  Sending through %s...\n", mailer.Name())

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	err = mailer.Send(ctx, types.Message{
		To:      testMailTo,
		Subject: "Storefront test email",
		Text:    "If you can read this, order and password reset emails will be delivered.",
	})
	if err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}

	fmt.Println("   ✅ Sent")
	return nil
}
