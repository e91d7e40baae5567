package services

import (
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// BlockedRangeInput describes whole days a teacher is away. A zero EndDate
// means a single day.
type BlockedRangeInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func buildBlockedRange(teacherID string, input BlockedRangeInput) (*models.BlockedRange, error) {
	if input.StartDate.IsZero() {
		return nil, invalid("start_date", "is required")
	}
	start := models.DateOf(input.StartDate)
	end := start
	if !input.EndDate.IsZero() {
		end = models.DateOf(input.EndDate)
	}
	if end.Before(start) {
		return nil, invalid("end_date", "must not be before start_date")
	}
	return &models.BlockedRange{
		TeacherID: teacherID,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(input.Reason),
	}, nil
}

// ListBlockedRanges returns every blocked range for a teacher ordered by start date
func ListBlockedRanges(db *gorm.DB, teacherID string) ([]models.BlockedRange, error) {
	var ranges []models.BlockedRange
	if err := db.Where("teacher_id = ?", teacherID).Order("start_date ASC").Find(&ranges).Error; err != nil {
		return nil, fmt.Errorf("failed to list blocked ranges: %w", err)
	}
	return ranges, nil
}

// ListBlockedRangesBetween returns ranges touching [from, to]
func ListBlockedRangesBetween(db *gorm.DB, teacherID string, from, to time.Time) ([]models.BlockedRange, error) {
	var ranges []models.BlockedRange
	err := db.Where("teacher_id = ? AND start_date <= ? AND end_date >= ?",
		teacherID, models.DateOf(to), models.DateOf(from)).
		Order("start_date ASC").
		Find(&ranges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked ranges: %w", err)
	}
	return ranges, nil
}

// CreateBlockedRange stores a new blocked range
func CreateBlockedRange(db *gorm.DB, teacherID string, input BlockedRangeInput) (*models.BlockedRange, error) {
	blocked, err := buildBlockedRange(teacherID, input)
	if err != nil {
		return nil, err
	}
	if err := db.Create(blocked).Error; err != nil {
		return nil, fmt.Errorf("failed to create blocked range: %w", err)
	}
	return blocked, nil
}

// DeleteBlockedRange removes a blocked range after verifying ownership
func DeleteBlockedRange(db *gorm.DB, teacherID, id string) error {
	var blocked models.BlockedRange
	if err := db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&blocked).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("blocked range", id)
		}
		return fmt.Errorf("failed to load blocked range: %w", err)
	}
	if err := db.Delete(&blocked).Error; err != nil {
		return fmt.Errorf("failed to delete blocked range: %w", err)
	}
	return nil
}

// ReplaceBlockedRanges swaps a teacher's whole set of blocked ranges in one
// transaction. Every input is validated before anything is deleted.
func ReplaceBlockedRanges(db *gorm.DB, teacherID string, inputs []BlockedRangeInput) ([]models.BlockedRange, error) {
	ranges := make([]models.BlockedRange, 0, len(inputs))
	for i, input := range inputs {
		blocked, err := buildBlockedRange(teacherID, input)
		if err != nil {
			var v *ValidationError
			if errors.As(err, &v) {
				v.Field = fmt.Sprintf("blocked_dates[%d].%s", i, v.Field)
			}
			return nil, err
		}
		ranges = append(ranges, *blocked)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return replaceBlockedRangesTx(tx, teacherID, ranges)
	})
	if err != nil {
		return nil, err
	}
	return ranges, nil
}

func replaceBlockedRangesTx(tx *gorm.DB, teacherID string, ranges []models.BlockedRange) error {
	if err := tx.Where("teacher_id = ?", teacherID).Delete(&models.BlockedRange{}).Error; err != nil {
		return fmt.Errorf("failed to clear blocked ranges: %w", err)
	}
	if len(ranges) == 0 {
		return nil
	}
	if err := tx.Create(&ranges).Error; err != nil {
		return fmt.Errorf("failed to insert blocked ranges: %w", err)
	}
	return nil
}
