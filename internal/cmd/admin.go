package cmd

import (
	"fmt"

	"github.com/pinobite/storefront/internal/accounts"
	"github.com/pinobite/storefront/internal/store"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account",
	Long: `Creates a staff account that can manage the catalog and orders and
use the password reset flow. Existing users without a loyalty profile get one
as a side effect.`,
	RunE: createAdmin,
}

var ensureProfilesCmd = &cobra.Command{
	Use:   "ensure-profiles",
	Short: "Provision loyalty profiles for users that lack one",
	RunE:  ensureProfiles,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(ensureProfilesCmd)

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Login name (required)")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address, also used for password resets (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Initial password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func createAdmin(cmd *cobra.Command, args []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(adminPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	svc := accounts.NewService(store.New(db.DB), logger)
	user, err := svc.CreateStaff(cmd.Context(), accounts.RegisterInput{
		Username: adminUsername,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}
	fmt.Printf("✅ Staff account %q created (id %d)\n", user.Username, user.ID)

	n, err := svc.EnsureProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to provision profiles: %w", err)
	}
	if n > 0 {
		fmt.Printf("   👥 Provisioned %d missing profile(s)\n", n)
	}
	return nil
}

func ensureProfiles(cmd *cobra.Command, args []string) error {
	_, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := accounts.NewService(store.New(db.DB), logger).EnsureProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to provision profiles: %w", err)
	}
	fmt.Printf("✅ Provisioned %d profile(s)\n", n)
	return nil
}
