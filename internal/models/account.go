package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	Username     string       `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Email        string       `json:"email" gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"column:password;size:255;not null"`
	FirstName    string       `json:"first_name" gorm:"size:150"`
	LastName     string       `json:"last_name" gorm:"size:150"`
	IsStaff      bool         `json:"is_staff" gorm:"not null;default:false"`
	IsActive     bool         `json:"-" gorm:"not null;default:true"`
	DateJoined   time.Time    `json:"date_joined" gorm:"autoCreateTime"`
	Profile      *UserProfile `json:"profile" gorm:"constraint:OnDelete:CASCADE"`
}

func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type Tier string

const (
	TierMember    Tier = "Member"
	TierProMember Tier = "Pro Member"
	TierProElite  Tier = "Pro Elite"
	TierLegend    Tier = "Legend Tier"
)

func (t Tier) Valid() bool {
	switch t {
	case TierMember, TierProMember, TierProElite, TierLegend:
		return true
	}
	return false
}

// UserProfile holds the loyalty data attached to exactly one user.
type UserProfile struct {
	ID      int64           `json:"-" gorm:"primaryKey"`
	UserID  int64           `json:"-" gorm:"not null;uniqueIndex"`
	Points  int             `json:"points" gorm:"not null;default:0"`
	Tier    Tier            `json:"tier" gorm:"size:20;not null"`
	Savings decimal.Decimal `json:"savings" gorm:"type:decimal(10,2);not null"`
	Phone   *string         `json:"phone" gorm:"size:15"`
	Address *string         `json:"address" gorm:"type:text"`
}

func (p *UserProfile) BeforeSave(*gorm.DB) error {
	if p.Tier == "" {
		p.Tier = TierMember
	}

	errs := FieldErrors{}
	if !p.Tier.Valid() {
		errs["tier"] = "oneof=Member|Pro Member|Pro Elite|Legend Tier"
	}
	if p.Points < 0 {
		errs["points"] = "gte=0"
	}
	if p.Savings.IsNegative() {
		errs["savings"] = "gte=0"
	}
	if p.Phone != nil && len(*p.Phone) > 15 {
		errs["phone"] = "max=15"
	}
	return errs.orNil()
}
