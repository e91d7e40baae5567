package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus tracks where a reservation or booking request is in its lifecycle
type PaymentStatus string

const (
	StatusRequest   PaymentStatus = "request"
	StatusQuoteSent PaymentStatus = "quote-sent"
	StatusPending   PaymentStatus = "pending"
	StatusPaid      PaymentStatus = "paid"
	StatusPartial   PaymentStatus = "partial"
	StatusRefunded  PaymentStatus = "refunded"
)

// Reservation sources
const (
	SourceCheckout = "checkout"
	SourceManual   = "manual"
	SourceWebhook  = "webhook"
)

// statusTransitions lists the administrative moves allowed from each status.
// Refunded has no way out.
var statusTransitions = map[PaymentStatus][]PaymentStatus{
	StatusRequest:   {StatusQuoteSent},
	StatusQuoteSent: {StatusQuoteSent, StatusPaid},
	StatusPending:   {StatusPaid, StatusPartial, StatusRefunded},
	StatusPartial:   {StatusPaid, StatusRefunded},
	StatusPaid:      {StatusRefunded},
	StatusRefunded:  {},
}

// IsValid reports whether s is a known status
func (s PaymentStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsScheduledStatus reports whether a scheduled reservation may carry s
func (s PaymentStatus) IsScheduledStatus() bool {
	switch s {
	case StatusPending, StatusPaid, StatusPartial, StatusRefunded:
		return true
	}
	return false
}

// Customer is the contact snapshot shared by reservations and booking requests
type Customer struct {
	Name  string  `gorm:"size:200;not null" json:"name"`
	Email string  `gorm:"size:255;not null;index" json:"email"`
	Phone *string `gorm:"size:40" json:"phone,omitempty"`
}

// ScheduledReservation is a booked slot on a concrete date and time.
// (teacher_id, date, start_time) is unique at the storage layer and is the
// only double-booking guard.
type ScheduledReservation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherID string `gorm:"type:uuid;not null;uniqueIndex:idx_reservation_slot;uniqueIndex:idx_reservation_external;index" json:"teacher_id"`

	Customer Customer `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`

	Date      time.Time `gorm:"type:date;not null;uniqueIndex:idx_reservation_slot" json:"date"`
	StartTime string    `gorm:"size:5;not null;uniqueIndex:idx_reservation_slot" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`

	Hours         decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hours"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null;index" json:"payment_status"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`

	Source     string  `gorm:"size:20;not null;default:checkout" json:"source"`
	WindowID   *string `gorm:"type:uuid" json:"window_id,omitempty"`
	ExternalID *string `gorm:"size:128;uniqueIndex:idx_reservation_external" json:"external_id,omitempty"`

	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *ScheduledReservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = StatusPending
	}
	return nil
}

// BeforeSave keeps the date in canonical form so the slot index compares equal
func (r *ScheduledReservation) BeforeSave(tx *gorm.DB) error {
	r.Date = DateOf(r.Date)
	return nil
}

// TableName specifies the table name for ScheduledReservation model
func (ScheduledReservation) TableName() string {
	return "reservations"
}

// StartsAt returns the reservation start as an instant in loc
func (r *ScheduledReservation) StartsAt(loc *time.Location) time.Time {
	clock, err := time.Parse("15:04", r.StartTime)
	if err != nil {
		return time.Time{}
	}
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
}
