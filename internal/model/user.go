package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered user and the state attached to it: credentials,
// profile, email verification and the per-user exam window.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     *string   `json:"username,omitempty" gorm:"uniqueIndex;size:255"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string    `json:"full_name,omitempty" gorm:"size:255"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON

	IsActive      bool       `json:"is_active" gorm:"default:true;index"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	// Optional profile fields, persisted only when supplied.
	Age           *int    `json:"age,omitempty"`
	Gender        *string `json:"gender,omitempty" gorm:"size:50"`
	LanguageLevel *string `json:"language_level,omitempty" gorm:"size:50"`

	// Exam window: time_end = time_start + duration; the window is active
	// while now < time_end.
	TimeStart *time.Time `json:"time_start,omitempty"`
	Duration  *int       `json:"duration,omitempty" gorm:"default:3600"`
	TimeEnd   *time.Time `json:"time_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
