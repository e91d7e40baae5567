package models

import (
	"time"
)

// Session is a teacher login. Only an HMAC of the bearer token is stored; Token is filled in once, when the session is created.
type Session struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TeacherID string    `gorm:"type:uuid;not null;index" json:"teacher_id"`
	Token     string    `gorm:"-" json:"-"`
	TokenHash string    `gorm:"uniqueIndex;not null;type:varchar(64)" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	IPAddress string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`

	Teacher Teacher `gorm:"foreignKey:TeacherID" json:"-"`
}

// TableName specifies the table name for Session model
func (Session) TableName() string {
	return "sessions"
}

// IsExpiredAt reports whether the session has expired at now
func (s *Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
