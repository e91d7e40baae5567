package services

import (
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// WindowInput carries the editable fields of an availability window
type WindowInput struct {
	Title       string
	DayOfWeek   int
	StartTime   string
	EndTime     string
	ActiveFrom  time.Time
	ActiveUntil *time.Time
	IsActive    bool
}

// validateWindowInput checks field formats and ordering
func validateWindowInput(input WindowInput) error {
	if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
		return invalid("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	start, err := ParseTimeOfDay(input.StartTime)
	if err != nil {
		return invalid("start_time", "%v", err)
	}
	end, err := ParseTimeOfDay(input.EndTime)
	if err != nil {
		return invalid("end_time", "%v", err)
	}
	if end <= start {
		return invalid("end_time", "must be after start time")
	}
	if input.ActiveFrom.IsZero() {
		return invalid("active_from", "is required")
	}
	if input.ActiveUntil != nil && models.DateOf(*input.ActiveUntil).Before(models.DateOf(input.ActiveFrom)) {
		return invalid("active_until", "must not be before active_from")
	}
	return nil
}

// ListWindows returns a teacher's windows ordered by day and start time
func ListWindows(db *gorm.DB, teacherID string, includeInactive bool) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	query := db.Where("teacher_id = ?", teacherID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("day_of_week ASC, start_time ASC").Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	return windows, nil
}

// GetWindow loads one window, verifying it belongs to the teacher
func GetWindow(db *gorm.DB, teacherID, windowID string) (*models.AvailabilityWindow, error) {
	var window models.AvailabilityWindow
	if err := db.Where("id = ? AND teacher_id = ?", windowID, teacherID).First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("availability window", windowID)
		}
		return nil, fmt.Errorf("failed to load availability window: %w", err)
	}
	return &window, nil
}

// CheckWindowOverlap rejects a window whose time interval overlaps another
// active window of the same teacher on the same weekday while their active
// date ranges overlap.
func CheckWindowOverlap(db *gorm.DB, candidate *models.AvailabilityWindow) error {
	if !candidate.IsActive {
		return nil
	}
	start, err := ParseTimeOfDay(candidate.StartTime)
	if err != nil {
		return invalid("start_time", "%v", err)
	}
	end, err := ParseTimeOfDay(candidate.EndTime)
	if err != nil {
		return invalid("end_time", "%v", err)
	}

	var siblings []models.AvailabilityWindow
	query := db.Where("teacher_id = ? AND day_of_week = ? AND is_active = ?", candidate.TeacherID, candidate.DayOfWeek, true)
	if candidate.ID != "" {
		query = query.Where("id <> ?", candidate.ID)
	}
	if err := query.Find(&siblings).Error; err != nil {
		return fmt.Errorf("failed to check window overlap: %w", err)
	}

	for i := range siblings {
		other := &siblings[i]
		if !candidate.DateRangeOverlaps(other) {
			continue
		}
		otherStart, err1 := ParseTimeOfDay(other.StartTime)
		otherEnd, err2 := ParseTimeOfDay(other.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start < otherEnd && otherStart < end {
			return &ConflictError{
				Resource: "availability window",
				Message: fmt.Sprintf("overlaps existing %s window %s-%s%s",
					other.DayName(), other.StartTime, other.EndTime, titleSuffix(other.Title)),
			}
		}
	}
	return nil
}

func titleSuffix(title string) string {
	if title == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", title)
}

// CreateWindow publishes a new weekly window
func CreateWindow(db *gorm.DB, teacherID string, input WindowInput) (*models.AvailabilityWindow, error) {
	if err := validateWindowInput(input); err != nil {
		return nil, err
	}

	window := &models.AvailabilityWindow{
		TeacherID:   teacherID,
		Title:       strings.TrimSpace(input.Title),
		DayOfWeek:   input.DayOfWeek,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		ActiveFrom:  models.DateOf(input.ActiveFrom),
		ActiveUntil: input.ActiveUntil,
		IsActive:    input.IsActive,
	}

	if err := CheckWindowOverlap(db, window); err != nil {
		return nil, err
	}
	if err := db.Create(window).Error; err != nil {
		return nil, fmt.Errorf("failed to create availability window: %w", err)
	}
	return window, nil
}

// UpdateWindow replaces the editable fields of an existing window
func UpdateWindow(db *gorm.DB, teacherID, windowID string, input WindowInput) (*models.AvailabilityWindow, error) {
	if err := validateWindowInput(input); err != nil {
		return nil, err
	}
	window, err := GetWindow(db, teacherID, windowID)
	if err != nil {
		return nil, err
	}

	window.Title = strings.TrimSpace(input.Title)
	window.DayOfWeek = input.DayOfWeek
	window.StartTime = input.StartTime
	window.EndTime = input.EndTime
	window.ActiveFrom = models.DateOf(input.ActiveFrom)
	window.ActiveUntil = input.ActiveUntil
	window.IsActive = input.IsActive

	if err := CheckWindowOverlap(db, window); err != nil {
		return nil, err
	}
	if err := db.Save(window).Error; err != nil {
		return nil, fmt.Errorf("failed to update availability window: %w", err)
	}
	return window, nil
}

// DeactivateWindow soft-disables a window. Windows are never hard-deleted.
func DeactivateWindow(db *gorm.DB, teacherID, windowID string) (*models.AvailabilityWindow, error) {
	window, err := GetWindow(db, teacherID, windowID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(window).Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate availability window: %w", err)
	}
	window.IsActive = false
	return window, nil
}

// ActivateWindow re-enables a window, re-checking the overlap rule first
func ActivateWindow(db *gorm.DB, teacherID, windowID string) (*models.AvailabilityWindow, error) {
	window, err := GetWindow(db, teacherID, windowID)
	if err != nil {
		return nil, err
	}
	if window.IsActive {
		return window, nil
	}
	window.IsActive = true
	if err := CheckWindowOverlap(db, window); err != nil {
		return nil, err
	}
	if err := db.Model(window).Update("is_active", true).Error; err != nil {
		return nil, fmt.Errorf("failed to activate availability window: %w", err)
	}
	return window, nil
}
