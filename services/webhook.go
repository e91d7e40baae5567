package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// External booking event names
const (
	WebhookBookingCreated   = "booking.created"
	WebhookBookingUpdated   = "booking.updated"
	WebhookBookingCancelled = "booking.cancelled"
)

// WebhookSignatureHeader carries "sha256=<hex hmac of the raw body>"
const WebhookSignatureHeader = "X-Webhook-Signature"

// ExternalBooking is a booking as an external scheduling system reports it
type ExternalBooking struct {
	ID       string `json:"id"`
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Date      string           `json:"date"`
	StartTime string           `json:"start_time"`
	EndTime   string           `json:"end_time"`
	Amount    *decimal.Decimal `json:"amount"`
	Status    string           `json:"status"`
	Notes     string           `json:"notes"`
}

// WebhookEvent is the envelope posted by the external system
type WebhookEvent struct {
	Event   string          `json:"event"`
	Booking ExternalBooking `json:"booking"`
}

// WebhookResult reports what an event did
type WebhookResult struct {
	Outcome     string                       `json:"outcome"`
	Reservation *models.ScheduledReservation `json:"reservation,omitempty"`
}

// SignWebhookPayload returns the signature header value for body
func SignWebhookPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks a signature header in constant time
func VerifyWebhookSignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	expected := SignWebhookPayload(secret, body)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// ApplyWebhookEvent maps an external event onto the teacher's reservations,
// keyed by the external booking id.
func ApplyWebhookEvent(db *gorm.DB, teacherID string, event WebhookEvent) (*WebhookResult, error) {
	externalID := strings.TrimSpace(event.Booking.ID)
	if externalID == "" {
		return nil, invalid("booking.id", "is required")
	}

	result, err := applyWebhookEvent(db, teacherID, externalID, event)
	outcome := "error"
	if err == nil {
		outcome = result.Outcome
	}
	webhookEvents.WithLabelValues(event.Event, outcome).Inc()
	if err != nil {
		zap.L().Warn("webhook event rejected",
			zap.String("event", event.Event),
			zap.String("external_id", externalID),
			zap.Error(err))
	}
	return result, err
}

func applyWebhookEvent(db *gorm.DB, teacherID, externalID string, event WebhookEvent) (*WebhookResult, error) {
	existing, err := findByExternalID(db, teacherID, externalID)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	switch event.Event {
	case WebhookBookingCreated:
		if existing != nil {
			return updateFromExternal(db, existing, event.Booking)
		}
		return createFromExternal(db, teacherID, externalID, event.Booking)
	case WebhookBookingUpdated:
		if existing == nil {
			return nil, notFound("reservation", externalID)
		}
		return updateFromExternal(db, existing, event.Booking)
	case WebhookBookingCancelled:
		if existing == nil {
			return &WebhookResult{Outcome: "ignored"}, nil
		}
		if err := db.Delete(existing).Error; err != nil {
			return nil, fmt.Errorf("failed to delete reservation: %w", err)
		}
		return &WebhookResult{Outcome: "cancelled", Reservation: existing}, nil
	}
	return nil, invalid("event", "unsupported event %q", event.Event)
}

func findByExternalID(db *gorm.DB, teacherID, externalID string) (*models.ScheduledReservation, error) {
	var r models.ScheduledReservation
	if err := db.Where("teacher_id = ? AND external_id = ?", teacherID, externalID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("reservation", externalID)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &r, nil
}

// applyExternalBooking copies the external fields onto r, validating them
func applyExternalBooking(teacher *models.Teacher, r *models.ScheduledReservation, b ExternalBooking) error {
	customer, err := normalizeCustomer(CustomerInput{Name: b.Customer.Name, Email: b.Customer.Email, Phone: b.Customer.Phone})
	if err != nil {
		return err
	}
	date, err := ParseDate(b.Date)
	if err != nil {
		return invalid("booking.date", "%v", err)
	}
	start, err := ParseTimeOfDay(b.StartTime)
	if err != nil {
		return invalid("booking.start_time", "%v", err)
	}
	end, err := ParseTimeOfDay(b.EndTime)
	if err != nil {
		return invalid("booking.end_time", "%v", err)
	}
	if end <= start {
		return invalid("booking.end_time", "must be after start time")
	}

	status := models.PaymentStatus(b.Status)
	if status == "" {
		status = r.PaymentStatus
	}
	if status == "" {
		status = models.StatusPending
	}
	if !status.IsScheduledStatus() {
		return invalid("booking.status", "%q is not a valid reservation status", b.Status)
	}

	hours := HoursBetween(start, end)
	amount := CostFor(teacher, hours)
	if b.Amount != nil {
		if b.Amount.IsNegative() {
			return invalid("booking.amount", "must not be negative")
		}
		amount = b.Amount.Round(2)
	}

	r.Customer = customer
	r.Date = date
	r.StartTime = start.String()
	r.EndTime = end.String()
	r.Hours = hours
	r.AmountPaid = amount
	r.PaymentStatus = status
	if notes := strings.TrimSpace(b.Notes); notes != "" {
		r.Notes = notes
	}
	return nil
}

func createFromExternal(db *gorm.DB, teacherID, externalID string, b ExternalBooking) (*WebhookResult, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	r := &models.ScheduledReservation{
		TeacherID:  teacherID,
		Source:     models.SourceWebhook,
		ExternalID: &externalID,
	}
	if err := applyExternalBooking(teacher, r, b); err != nil {
		return nil, err
	}
	if err := insertReservation(db, r); err != nil {
		return nil, err
	}
	reservationsCreated.WithLabelValues(models.SourceWebhook).Inc()
	return &WebhookResult{Outcome: "created", Reservation: r}, nil
}

func updateFromExternal(db *gorm.DB, r *models.ScheduledReservation, b ExternalBooking) (*WebhookResult, error) {
	teacher, err := GetTeacherByID(db, r.TeacherID)
	if err != nil {
		return nil, err
	}
	if err := applyExternalBooking(teacher, r, b); err != nil {
		return nil, err
	}
	if err := db.Save(r).Error; err != nil {
		if isUniqueViolation(err) {
			bookingConflicts.Inc()
			return nil, &ConflictError{
				Resource: "slot",
				Message:  fmt.Sprintf("%s at %s is already booked", FormatDate(r.Date), r.StartTime),
			}
		}
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	return &WebhookResult{Outcome: "updated", Reservation: r}, nil
}
