package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockedRange is an inclusive run of whole days a teacher is unavailable
type BlockedRange struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherID string    `gorm:"type:uuid;index;not null" json:"teacher_id"`
	StartDate time.Time `gorm:"type:date;not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index" json:"end_date"`
	Reason    string    `json:"reason"` // "Holiday", "Vacation", ...
}

// BeforeCreate hook to generate UUID
func (b *BlockedRange) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// BeforeSave keeps the range in canonical form, defaulting EndDate to StartDate
func (b *BlockedRange) BeforeSave(tx *gorm.DB) error {
	b.StartDate = DateOf(b.StartDate)
	if b.EndDate.IsZero() {
		b.EndDate = b.StartDate
	}
	b.EndDate = DateOf(b.EndDate)
	return nil
}

// TableName specifies the table name for BlockedRange model
func (BlockedRange) TableName() string {
	return "blocked_ranges"
}

// Covers reports whether date falls inside the range
func (b *BlockedRange) Covers(date time.Time) bool {
	d := DateOf(date)
	end := b.EndDate
	if end.IsZero() {
		end = b.StartDate
	}
	return !d.Before(DateOf(b.StartDate)) && !d.After(DateOf(end))
}
