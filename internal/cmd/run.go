package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/auth"
	"github.com/pinobite/storefront/internal/checkout"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/passwordreset"
	"github.com/pinobite/storefront/internal/providers"
	"github.com/pinobite/storefront/internal/server"
	"github.com/pinobite/storefront/internal/store"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the storefront API server",
	Long: `Start the storefront API server which provides:
- REST API for the catalog, site content and visitor forms
- Customer accounts and JWT authentication
- Razorpay checkout and order status emails
- Staff password reset by emailed one-time code`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !skipMigrate {
		logger.Info("Migrating schema")
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	gateway, err := providers.NewPaymentGateway(&cfg.Payment)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}
	mailer, err := providers.NewMailer(&cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %w", err)
	}

	dispatcher := notify.NewDispatcher(mailer, cfg.Mail, logger)
	dispatcher.Start()

	st := store.New(db.DB)
	srv, err := server.NewServer(ctx, server.Deps{
		Config:        cfg,
		DB:            db,
		Store:         st,
		Tokens:        auth.NewTokenIssuer(cfg.Auth),
		Accounts:      accounts.NewService(st, logger),
		Checkout:      checkout.NewService(st, gateway, dispatcher, cfg.Payment.Currency, logger),
		PasswordReset: passwordreset.NewService(st, dispatcher, cfg.OTP, logger),
		Publisher:     dispatcher,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to set up server: %w", err)
	}

	logger.Info("Storefront starting", "payment", cfg.Payment.Provider, "mailer", mailer.Name())
	runErr := srv.Run(ctx)

	// The HTTP server is down, so nothing publishes any more. Give queued
	// emails the shutdown budget to go out.
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	closeCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := dispatcher.Close(closeCtx); err != nil {
		logger.Warn("Notification queue not fully drained", "error", err)
	}

	if runErr != nil {
		return fmt.Errorf("server failed: %w", runErr)
	}
	logger.Info("Storefront stopped")
	return nil
}
