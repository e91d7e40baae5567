package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingRequest is an inbox item from the request-a-quote form. It has no
// date or time of its own; the teacher turns it into business by attaching a quote.
type BookingRequest struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TeacherID string   `gorm:"type:uuid;index;not null" json:"teacher_id"`
	Customer  Customer `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`

	// Notes holds the serialised form answers
	Notes  string          `gorm:"type:text" json:"notes"`
	Status PaymentStatus   `gorm:"size:20;not null;index" json:"status"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`

	QuoteDescription   string           `gorm:"type:text" json:"quote_description,omitempty"`
	QuoteDurationHours *decimal.Decimal `gorm:"type:decimal(6,2)" json:"quote_duration_hours,omitempty"`
	QuoteNotes         string           `gorm:"type:text" json:"quote_notes,omitempty"`
	InvoiceRef         *string          `gorm:"size:128" json:"invoice_ref,omitempty"`

	QuotedAt *time.Time `json:"quoted_at,omitempty"`
	PaidAt   *time.Time `json:"paid_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (b *BookingRequest) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Status == "" {
		b.Status = StatusRequest
	}
	return nil
}

// TableName specifies the table name for BookingRequest model
func (BookingRequest) TableName() string {
	return "booking_requests"
}
