package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FormFieldToggles selects which optional contact fields the public
// request form collects. Name and email are always collected.
type FormFieldToggles struct {
	Phone       bool `gorm:"not null" json:"phone"`
	Address     bool `gorm:"not null" json:"address"`
	Dates       bool `gorm:"not null" json:"dates"`
	Description bool `gorm:"not null" json:"description"`
}

// BookingSettings is the per-teacher booking policy. Exactly one row per teacher.
type BookingSettings struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherID string `gorm:"type:uuid;uniqueIndex;not null" json:"teacher_id"`

	MinAdvanceBookingHours  int  `gorm:"not null" json:"min_advance_booking_hours"`
	MaxAdvanceBookingDays   int  `gorm:"not null" json:"max_advance_booking_days"` // 0 means unbounded
	SessionDurationMinutes  int  `gorm:"not null" json:"session_duration_minutes"`
	BufferMinutes           int  `gorm:"not null" json:"buffer_minutes"`
	AllowWeekends           bool `gorm:"not null" json:"allow_weekends"`
	AllowSameDayBooking     bool `gorm:"not null" json:"allow_same_day_booking"`
	CancellationPolicyHours int  `gorm:"not null" json:"cancellation_policy_hours"`
	MaxSessionsPerDay       int  `gorm:"not null" json:"max_sessions_per_day"` // 0 means unlimited

	AllowCustomerBook bool `gorm:"not null" json:"allow_customer_book"`
	AllowManualBook   bool `gorm:"not null" json:"allow_manual_book"`

	FormFields FormFieldToggles `gorm:"embedded;embeddedPrefix:form_" json:"form_fields"`
}

// BeforeCreate hook to generate UUID
func (s *BookingSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for BookingSettings model
func (BookingSettings) TableName() string {
	return "booking_settings"
}

// DefaultBookingSettings returns the policy a teacher gets before saving any settings
func DefaultBookingSettings(teacherID string) BookingSettings {
	return BookingSettings{
		TeacherID:               teacherID,
		MinAdvanceBookingHours:  0,
		MaxAdvanceBookingDays:   90,
		SessionDurationMinutes:  60,
		BufferMinutes:           0,
		AllowWeekends:           true,
		AllowSameDayBooking:     false,
		CancellationPolicyHours: 24,
		MaxSessionsPerDay:       0,
		AllowCustomerBook:       true,
		AllowManualBook:         true,
		FormFields: FormFieldToggles{
			Phone:       true,
			Description: true,
		},
	}
}
