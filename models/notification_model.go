package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationKind string

const (
	KindEnrollmentRequest   NotificationKind = "enrollment_request"
	KindRequestAccepted     NotificationKind = "request_accepted"
	KindRequestRejected     NotificationKind = "request_rejected"
	KindEnrollmentConfirmed NotificationKind = "enrollment_confirmed"
	KindPaymentReceived     NotificationKind = "payment_received"
	KindStudentRemoved      NotificationKind = "student_removed"
	KindCourseCancelled     NotificationKind = "course_cancelled"
	KindSessionReminder     NotificationKind = "session_reminder"
	KindScheduleIncomplete  NotificationKind = "schedule_incomplete"
)

type Notification struct {
	ID      uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	FromID  uuid.UUID         `gorm:"type:uuid" json:"from_id"`
	ToID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"to_id"`
	Kind    NotificationKind  `gorm:"size:40;not null" json:"kind"`
	Payload datatypes.JSONMap `json:"payload"`
	Read    bool              `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
