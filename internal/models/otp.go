package models

import "time"

type OTPStatus string

const (
	OTPStatusRequested OTPStatus = "REQUESTED"
	OTPStatusVerified  OTPStatus = "VERIFIED"
)

// PasswordResetOTP is a short-lived numeric code. A consumed code is deleted,
// an expired one is left in place and rejected at lookup. Attempts counts
// wrong guesses against it.
type PasswordResetOTP struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user" gorm:"not null;index:idx_otp_user_created,priority:1"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Code      string    `json:"-" gorm:"size:10;not null"`
	Status    OTPStatus `json:"status" gorm:"size:10;not null"`
	Attempts  int       `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index:idx_otp_user_created,priority:2"`
}

func (PasswordResetOTP) TableName() string {
	return "password_reset_otps"
}

func (o *PasswordResetOTP) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(o.CreatedAt) > ttl
}
