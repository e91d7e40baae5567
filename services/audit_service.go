package services

import (
	"encoding/json"
	"lessonbook_app_go/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditContext identifies who made a change and from where
type AuditContext struct {
	TeacherID string
	IPAddress string
	UserAgent string
	RequestID string
}

// RecordAuditEvent writes one audit row
func RecordAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	description string,
	newValues interface{},
) error {
	var newJSON string
	if newValues != nil {
		if bytes, err := json.Marshal(newValues); err == nil {
			newJSON = string(bytes)
		}
	}

	entry := models.AuditLog{
		TeacherID:    ctx.TeacherID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Description:  description,
		NewValues:    newJSON,
		IPAddress:    ctx.IPAddress,
		UserAgent:    ctx.UserAgent,
		RequestID:    ctx.RequestID,
	}
	return db.Create(&entry).Error
}

// LogAuditEvent records an audit row without blocking the request
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	description string,
	newValues interface{},
) {
	go func() {
		if err := RecordAuditEvent(db, ctx, action, resourceType, resourceID, description, newValues); err != nil {
			zap.L().Warn("failed to create audit log",
				zap.String("resource_type", resourceType),
				zap.String("resource_id", resourceID),
				zap.Error(err))
		}
	}()
}

// GetTeacherAuditLogs returns a teacher's audit trail, newest first
func GetTeacherAuditLogs(db *gorm.DB, teacherID string, resourceType string, page, pageSize int) ([]models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	query := db.Model(&models.AuditLog{}).Where("teacher_id = ?", teacherID)
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}
