package services

import (
	"errors"
	"fmt"
	"lessonbook_app_go/models"

	"gorm.io/gorm"
)

// GetBookingSettings returns the teacher's policy, persisting the defaults
// the first time it is read.
func GetBookingSettings(db *gorm.DB, teacherID string) (*models.BookingSettings, error) {
	var settings models.BookingSettings
	err := db.Where("teacher_id = ?", teacherID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load booking settings: %w", err)
	}

	settings = models.DefaultBookingSettings(teacherID)
	if err := db.Create(&settings).Error; err != nil {
		if isUniqueViolation(err) {
			// Another request materialised the row first
			var existing models.BookingSettings
			if err := db.Where("teacher_id = ?", teacherID).First(&existing).Error; err != nil {
				return nil, fmt.Errorf("failed to load booking settings: %w", err)
			}
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create default booking settings: %w", err)
	}
	return &settings, nil
}

func validateBookingSettings(s *models.BookingSettings) error {
	switch {
	case s.MinAdvanceBookingHours < 0:
		return invalid("min_advance_booking_hours", "must not be negative")
	case s.MaxAdvanceBookingDays < 0:
		return invalid("max_advance_booking_days", "must not be negative")
	case s.SessionDurationMinutes <= 0 || s.SessionDurationMinutes > MinutesPerDay:
		return invalid("session_duration_minutes", "must be between 1 and %d", MinutesPerDay)
	case s.BufferMinutes < 0:
		return invalid("buffer_minutes", "must not be negative")
	case s.CancellationPolicyHours < 0:
		return invalid("cancellation_policy_hours", "must not be negative")
	case s.MaxSessionsPerDay < 0:
		return invalid("max_sessions_per_day", "must not be negative")
	}
	return nil
}

// SaveBookingSettings replaces the teacher's whole settings row. When
// blocked is non-nil the teacher's blocked ranges are replaced in the same
// transaction.
func SaveBookingSettings(db *gorm.DB, teacherID string, settings models.BookingSettings, blocked []BlockedRangeInput) (*models.BookingSettings, error) {
	settings.TeacherID = teacherID
	if err := validateBookingSettings(&settings); err != nil {
		return nil, err
	}

	var ranges []models.BlockedRange
	if blocked != nil {
		ranges = make([]models.BlockedRange, 0, len(blocked))
		for i, input := range blocked {
			r, err := buildBlockedRange(teacherID, input)
			if err != nil {
				var v *ValidationError
				if errors.As(err, &v) {
					v.Field = fmt.Sprintf("blocked_dates[%d].%s", i, v.Field)
				}
				return nil, err
			}
			ranges = append(ranges, *r)
		}
	}

	existing, err := GetBookingSettings(db, teacherID)
	if err != nil {
		return nil, err
	}
	settings.ID = existing.ID
	settings.CreatedAt = existing.CreatedAt

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&settings).Error; err != nil {
			return fmt.Errorf("failed to save booking settings: %w", err)
		}
		if blocked != nil {
			return replaceBlockedRangesTx(tx, teacherID, ranges)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
