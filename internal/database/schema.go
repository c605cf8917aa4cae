package database

import (
	"context"
	"fmt"

	"github.com/pinobite/storefront/internal/models"
	"gorm.io/gorm"
)

// Models lists every table in creation order. Parents come before the
// tables holding foreign keys to them.
func Models() []any {
	return []any{
		&models.Category{},
		&models.Product{},
		&models.Review{},
		&models.Event{},
		&models.BlogPost{},
		&models.Story{},
		&models.HeroSlide{},
		&models.User{},
		&models.UserProfile{},
		&models.Order{},
		&models.OrderItem{},
		&models.PasswordResetOTP{},
		&models.VisitorForm{},
		&models.VisitorSubmission{},
	}
}

// Migrate creates missing tables, columns and indexes.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CleanupData removes all rows (but keeps schema)
func (db *DB) CleanupData(ctx context.Context) error {
	tables := Models()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", tables[i], err)
		}
	}
	return nil
}

// DropSchema removes all tables, children first.
func (db *DB) DropSchema(ctx context.Context) error {
	tables := Models()
	migrator := db.WithContext(ctx).Migrator()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := migrator.DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop %T: %w", tables[i], err)
		}
	}
	return nil
}
