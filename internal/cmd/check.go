package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/pinobite/storefront/internal/checkout"
	"github.com/pinobite/storefront/internal/notify"
	"github.com/pinobite/storefront/internal/store"
	"github.com/spf13/cobra"
)

var olderThan time.Duration

var staleCmd = &cobra.Command{
	Use:   "stale-orders",
	Short: "List orders that never completed payment",
	Long: `Lists PENDING orders older than the given age. These are payment
intents the customer abandoned, or payments that succeeded at Razorpay but
were never verified here. Cross-check them in the Razorpay dashboard.`,
	RunE: checkStaleOrders,
}

func init() {
	rootCmd.AddCommand(staleCmd)

	staleCmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum order age (default checkout.stale_after)")
}

func checkStaleOrders(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	age := olderThan
	if age <= 0 {
		age = cfg.Checkout.StaleAfter
	}
	fmt.Printf("🔍 Checking for PENDING orders older than %s...\n", age)

	svc := checkout.NewService(store.New(db.DB), nil, notify.Discard{}, cfg.Payment.Currency, logger)
	orders, err := svc.StaleOrders(cmd.Context(), age)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Println("📭 No stale orders")
		return nil
	}

	fmt.Printf("\n📋 Found %d stale order%s:\n", len(orders), plural(len(orders)))
	fmt.Println(strings.Repeat("─", 80))
	for _, o := range orders {
		gatewayID := "-"
		if o.GatewayOrderID != nil {
			gatewayID = *o.GatewayOrderID
		}
		fmt.Printf("#%-6d %s  %-28s %10s %s  %s\n",
			o.ID, o.CreatedAt.Format(time.DateTime), o.Email, o.TotalAmount.StringFixed(2), o.Currency, gatewayID)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
