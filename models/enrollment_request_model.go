package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// EnrollmentRequest is a student's ask to join a free course. Student fields are a snapshot
// taken when the request was made.
type EnrollmentRequest struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"course_id"`
	StudentID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	StudentName   string        `gorm:"size:255" json:"student_name"`
	StudentEmail  string        `gorm:"size:255" json:"student_email"`
	StudentAvatar *string       `gorm:"size:512" json:"student_avatar"`
	Status        RequestStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	ResolvedAt    *time.Time    `json:"resolved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *EnrollmentRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
