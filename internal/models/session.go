package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of a session. The only transition is ACTIVE to INACTIVE.
type SessionStatus string

const (
	SessionStatusActive   SessionStatus = "ACTIVE"
	SessionStatusInactive SessionStatus = "INACTIVE"
)

// Session is an authenticated login bound to an opaque token held in a cookie.
// OS, Device, Browser and IPAddress are descriptive only.
type Session struct {
	ID           string        `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string        `gorm:"type:uuid;not null;index:idx_sessions_user_status" json:"user_id"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SessionToken string        `gorm:"uniqueIndex;size:64;not null" json:"-"`
	Status       SessionStatus `gorm:"size:16;not null;default:ACTIVE;index:idx_sessions_user_status" json:"status"`
	ExpiresAt    time.Time     `gorm:"index" json:"expires_at"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`

	OS        string            `json:"os"`
	Device    string            `json:"device"`
	Browser   string            `json:"browser"`
	IPAddress string            `json:"ip_address"`
	Details   datatypes.JSONMap `json:"details,omitempty"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	return nil
}

// IsExpired reports whether the session expiry lies strictly before now.
func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
