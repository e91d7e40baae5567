package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityWindow is a teacher's recurring weekly opening on one day of
// the week, bounded by an active date range. Windows are deactivated, never
// deleted.
type AvailabilityWindow struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherID   string     `gorm:"type:uuid;index:idx_window_teacher_day;not null" json:"teacher_id"`
	Title       string     `json:"title,omitempty"`
	DayOfWeek   int        `gorm:"not null;index:idx_window_teacher_day" json:"day_of_week"` // 0=Sunday...6=Saturday
	StartTime   string     `gorm:"not null;size:5" json:"start_time"`                       // "09:00"
	EndTime     string     `gorm:"not null;size:5" json:"end_time"`                         // "12:00"
	ActiveFrom  time.Time  `gorm:"type:date;not null" json:"active_from"`
	ActiveUntil *time.Time `gorm:"type:date" json:"active_until,omitempty"` // nil never expires
	IsActive    bool       `gorm:"not null" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (w *AvailabilityWindow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave keeps the date bounds in canonical form
func (w *AvailabilityWindow) BeforeSave(tx *gorm.DB) error {
	w.ActiveFrom = DateOf(w.ActiveFrom)
	if w.ActiveUntil != nil {
		until := DateOf(*w.ActiveUntil)
		w.ActiveUntil = &until
	}
	return nil
}

// TableName specifies the table name for AvailabilityWindow model
func (AvailabilityWindow) TableName() string {
	return "availability_windows"
}

// AppliesOn reports whether the window is published on the given date:
// active, same weekday, and inside [ActiveFrom, ActiveUntil].
func (w *AvailabilityWindow) AppliesOn(date time.Time) bool {
	if !w.IsActive {
		return false
	}
	d := DateOf(date)
	if int(d.Weekday()) != w.DayOfWeek {
		return false
	}
	if d.Before(DateOf(w.ActiveFrom)) {
		return false
	}
	if w.ActiveUntil != nil && d.After(DateOf(*w.ActiveUntil)) {
		return false
	}
	return true
}

// DateRangeOverlaps reports whether two windows share at least one active date
func (w *AvailabilityWindow) DateRangeOverlaps(other *AvailabilityWindow) bool {
	if w.ActiveUntil != nil && DateOf(*w.ActiveUntil).Before(DateOf(other.ActiveFrom)) {
		return false
	}
	if other.ActiveUntil != nil && DateOf(*other.ActiveUntil).Before(DateOf(w.ActiveFrom)) {
		return false
	}
	return true
}

// DayName returns the name of the day
func (w *AvailabilityWindow) DayName() string {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if w.DayOfWeek >= 0 && w.DayOfWeek < 7 {
		return days[w.DayOfWeek]
	}
	return ""
}
