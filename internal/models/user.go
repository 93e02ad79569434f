package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is a person able to sign in. The password hash never leaves the server.
type User struct {
	BaseModel

	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	LastLoggedAt *time.Time `json:"last_logged_at"`
	LastLoginIP  string     `json:"last_login_ip"`

	FailedAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil    *time.Time `json:"-"`
}

// BeforeSave normalises the email address.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
