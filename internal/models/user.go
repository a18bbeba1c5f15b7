package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // needed for pq.StringArray
	"gorm.io/gorm"
)

// User represents an account in the system.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"` // UUID
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Name         string `json:"name"`
	// Topics holds the conflict areas picked during onboarding screening.
	Topics pq.StringArray `gorm:"type:text[]" json:"topics,omitempty"`
	// UnlimitedRooms bypasses the free-tier active-room quota. Admin-granted.
	UnlimitedRooms bool `json:"-"`
	// TelegramID links an optional Telegram chat for phase notifications.
	// Zero means not linked.
	TelegramID int64 `gorm:"index" json:"-"`
}

// BeforeCreate is a GORM hook that generates a new UUID for the user
// if the ID is not yet set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
