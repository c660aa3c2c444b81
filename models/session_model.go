package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const RepetitionWeekly = "weekly"

// Session is one concrete calendar event. Course-derived sessions carry the student in
// OwnerID and the instructor in CreatedBy; both appear in Participants.
type Session struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Date        string    `gorm:"size:10;not null;index" json:"date"`
	StartTime   string    `gorm:"size:5" json:"start_time"`
	EndTime     string    `gorm:"size:5" json:"end_time"`

	IsOnline   bool    `gorm:"default:false" json:"is_online"`
	OnlineLink *string `gorm:"size:512" json:"online_link"`
	Location   *string `gorm:"size:255" json:"location"`

	Participants datatypes.JSONSlice[uuid.UUID] `json:"participants"`
	Attendees    int                            `json:"attendees"`
	OwnerID      uuid.UUID                      `gorm:"type:uuid;not null;index" json:"owner_id"`
	CreatedBy    uuid.UUID                      `gorm:"type:uuid;not null;index" json:"created_by"`

	IsRepetitive        bool       `gorm:"default:false" json:"is_repetitive"`
	RepetitionID        string     `gorm:"size:100;index" json:"repetition_id"`
	RepetitionFrequency string     `gorm:"size:20" json:"repetition_frequency"`
	CourseID            *uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	IsCourseSession     bool       `gorm:"default:false" json:"is_course_session"`

	ReminderSentAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
