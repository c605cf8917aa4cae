package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pinobite/storefront/internal/config"
	"github.com/pinobite/storefront/internal/database"
	"github.com/pinobite/storefront/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Pinobite storefront - catalog, checkout and staff back office API",
	Long: `Storefront serves the Pinobite shop: the product catalog and site
content, customer accounts, Razorpay checkout, order tracking emails and the
staff password reset flow.

Run the API with "storefront run". The other commands prepare the database
and help operators with day to day tasks.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the logger and opens the database.
// The caller closes the returned handle.
func bootstrap() (*config.Config, *slog.Logger, *database.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Setup(cfg.Log)

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, logger, db, nil
}
