package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dropFirst   bool
	truncate    bool
	skipContent bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Creates every storefront table and index, or brings an existing
schema up to date. Use --drop-first to start from an empty database, or
--truncate to delete every row while keeping the tables.`,
	RunE: migrateSchema,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the catalog with the launch products",
	Long: `Inserts the launch product line and their categories, plus the home
page hero slides. Records that already exist are left alone, so the command
can run any number of times.`,
	RunE: seedCatalog,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	migrateCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables before creating")
	migrateCmd.Flags().BoolVar(&truncate, "truncate", false, "Delete all rows after migrating")
	seedCmd.Flags().BoolVar(&skipContent, "skip-content", false, "Seed products only, skip hero slides")
}

func migrateSchema(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up database schema...")

	_, _, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if dropFirst {
		fmt.Println("🗑️  Dropping existing tables...")
		if err := db.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
	}

	fmt.Println("📋 Migrating schema...")
	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if truncate {
		fmt.Println("🧹 Deleting all rows...")
		if err := db.CleanupData(ctx); err != nil {
			return fmt.Errorf("failed to clean data: %w", err)
		}
	}

	fmt.Println("✅ Schema is up to date")
	return nil
}

func seedCatalog(cmd *cobra.Command, args []string) error {
	fmt.Println("🌱 Seeding catalog...")

	_, _, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := db.SeedCatalog(cmd.Context(), !skipContent)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	fmt.Printf("   📦 Products created: %d\n", summary.Products)
	fmt.Printf("   🏷️  Categories created: %d\n", summary.Categories)
	if !skipContent {
		fmt.Printf("   🖼️  Hero slides created: %d\n", summary.HeroSlides)
	}
	fmt.Printf("   ⏭️  Already present: %d\n", summary.Skipped)
	fmt.Println("✅ Catalog ready")
	return nil
}
