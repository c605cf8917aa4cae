package store

import (
	"context"

	"github.com/pinobite/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateOTP(ctx context.Context, otp *models.PasswordResetOTP) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(otp).Error
}

// LatestOTP returns the most recently issued code for the user. Older codes
// are never consulted.
func (s *Store) LatestOTP(ctx context.Context, userID int64) (*models.PasswordResetOTP, error) {
	var otp models.PasswordResetOTP
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &otp, nil
}

func (s *Store) MarkOTP(ctx context.Context, id int64, status models.OTPStatus) error {
	return s.db.WithContext(ctx).Model(&models.PasswordResetOTP{}).Where("id = ?", id).Update("status", status).Error
}

func (s *Store) DeleteOTP(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&models.PasswordResetOTP{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordOTPFailure counts a wrong guess against the code and deletes the
// code once limit guesses have been made. It reports whether it deleted.
func (s *Store) RecordOTPFailure(ctx context.Context, id int64, limit int) (bool, error) {
	var discarded bool
	err := s.Transaction(ctx, func(tx *Store) error {
		db := tx.db.WithContext(ctx)
		if err := db.Model(&models.PasswordResetOTP{}).Where("id = ?", id).
			UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return err
		}
		result := db.Where("id = ? AND attempts >= ?", id, limit).Delete(&models.PasswordResetOTP{})
		if result.Error != nil {
			return result.Error
		}
		discarded = result.RowsAffected > 0
		return nil
	})
	return discarded, err
}
