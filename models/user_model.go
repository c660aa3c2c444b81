package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleModerator  = "moderator"
)

// User mirrors the profile owned by the auth provider; only the fields enrollment needs.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName          string    `gorm:"size:255;not null" json:"full_name"`
	Email             string    `gorm:"size:255;not null;unique" json:"email"`
	Role              string    `gorm:"size:20;not null;default:'student'" json:"role"`
	ProfilePictureURL *string   `gorm:"size:255" json:"profile_picture_url"`

	// PayoutAccountID is the instructor's connected account at the payment provider.
	PayoutAccountID *string `gorm:"size:255" json:"-"`
	IsActive        bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
