package models

import (
	"time"

	"gorm.io/gorm"
)

type FormStatus string

const (
	FormStatusDraft     FormStatus = "Draft"
	FormStatusPublished FormStatus = "Published"
)

// VisitorForm is a registration form handed out at an event.
type VisitorForm struct {
	ID          int64               `json:"id" gorm:"primaryKey"`
	Title       string              `json:"title" gorm:"size:255;not null" binding:"required,max=255"`
	EventName   string              `json:"event_name" gorm:"size:255;not null" binding:"required,max=255"`
	Status      FormStatus          `json:"status" gorm:"size:20;not null;default:Draft;index" binding:"omitempty,oneof=Draft Published"`
	CreatedAt   time.Time           `json:"created_at"`
	Submissions []VisitorSubmission `json:"submissions,omitempty" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE"`
}

func (f *VisitorForm) BeforeSave(*gorm.DB) error {
	if f.Status == "" {
		f.Status = FormStatusDraft
	}
	return nil
}

type VisitorSubmission struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FormID      int64     `json:"form" gorm:"not null;index" binding:"required,gt=0"`
	Name        string    `json:"name" gorm:"size:100;not null" binding:"required,max=100"`
	Email       string    `json:"email" gorm:"size:254;not null" binding:"required,email"`
	Phone       string    `json:"phone" gorm:"size:20" binding:"max=20"`
	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime"`
}
