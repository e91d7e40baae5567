package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
	AuditActionLogin  AuditAction = "LOGIN"
	AuditActionLogout AuditAction = "LOGOUT"
)

// AuditLog is an immutable record of a teacher-side change
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	TeacherID string `gorm:"type:uuid;not null;index:idx_audit_teacher" json:"teacher_id"`

	ResourceType string      `gorm:"not null;index:idx_audit_resource" json:"resource_type"` // e.g. "AvailabilityWindow"
	ResourceID   string      `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	Action       AuditAction `gorm:"not null" json:"action"`
	Description  string      `gorm:"type:text" json:"description,omitempty"`
	NewValues    string      `gorm:"type:text" json:"new_values,omitempty"` // JSON encoded

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	RequestID string `gorm:"size:64" json:"request_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate keeps audit rows append-only
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidTransaction
}

// BeforeDelete keeps audit rows append-only
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrInvalidTransaction
}

// TableName specifies the table name for AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
