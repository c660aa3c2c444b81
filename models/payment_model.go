package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentSucceeded = "succeeded"

	TransferCompleted = "completed"
	TransferPending   = "pending"
)

// Payment records one successful paid enrollment. Only TransferStatus and TransferID change
// after creation, when a pending instructor payout is retried.
type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`

	TotalAmount      float64 `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	BaseAmount       float64 `gorm:"type:numeric(10,2);not null" json:"base_amount"`
	PlatformFee      float64 `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	InstructorAmount float64 `gorm:"type:numeric(10,2);not null" json:"instructor_amount"`
	Currency         string  `gorm:"size:3" json:"currency"`

	Status          string  `gorm:"size:20;not null" json:"status"`
	TransferStatus  string  `gorm:"size:20;not null;index" json:"transfer_status"`
	TransferID      *string `gorm:"size:255" json:"transfer_id"`
	PayeeAccountRef string  `gorm:"size:255" json:"-"`

	MaskedCard      string `gorm:"size:32" json:"masked_card"`
	PaymentIntentID string `gorm:"size:255;unique" json:"payment_intent_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
