package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CourseType string

const (
	CourseTypeTimeBased  CourseType = "time-based"
	CourseTypeVideoBased CourseType = "video-based"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id"`

	Title             string  `gorm:"size:255;not null" json:"title"`
	Description       string  `gorm:"type:text" json:"description"`
	Category          string  `gorm:"size:100" json:"category"`
	ThumbnailURL      *string `gorm:"size:512" json:"thumbnail_url"`
	ThumbnailPublicID *string `gorm:"size:255" json:"-"`

	CourseType   CourseType               `gorm:"size:20;not null" json:"course_type"`
	Schedule     string                   `gorm:"size:100" json:"schedule"`
	StartTime    string                   `gorm:"size:5" json:"start_time"`
	EndTime      string                   `gorm:"size:5" json:"end_time"`
	StartDate    *time.Time               `json:"start_date"`
	EndDate      *time.Time               `json:"end_date"`
	WeekDays     datatypes.JSONSlice[int] `json:"week_days"`
	IsRepetitive bool                     `gorm:"default:false" json:"is_repetitive"`

	IsOnline   bool    `gorm:"default:false" json:"is_online"`
	OnlineLink *string `gorm:"size:512" json:"online_link"`
	Location   *string `gorm:"size:255" json:"location"`

	IsPaid     bool    `gorm:"default:false" json:"is_paid"`
	BasePrice  float64 `gorm:"type:numeric(10,2);default:0.00" json:"base_price"`
	FinalPrice float64 `gorm:"type:numeric(10,2);default:0.00" json:"final_price"`

	EnrolledStudents datatypes.JSONSlice[uuid.UUID] `json:"enrolled_students"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// HasRecurrence reports whether enrollment should materialize calendar sessions.
func (c *Course) HasRecurrence() bool {
	return c.CourseType == CourseTypeTimeBased && c.IsRepetitive
}

func (c *Course) IsEnrolled(studentID uuid.UUID) bool {
	return slices.Contains(c.EnrolledStudents, studentID)
}
