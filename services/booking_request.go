package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"lessonbook_app_go/models"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxAnswerLength caps a single form answer
const MaxAnswerLength = 4000

// QuoteInput is what a teacher attaches to a booking request
type QuoteInput struct {
	Description   string
	Amount        decimal.Decimal
	DurationHours decimal.Decimal
	Notes         string
}

var answerPolicy = bluemonday.StrictPolicy()

// sanitizeAnswer strips markup and trims a free-text answer
func sanitizeAnswer(value string) string {
	clean := html.UnescapeString(answerPolicy.Sanitize(value))
	clean = strings.TrimSpace(clean)
	if len(clean) > MaxAnswerLength {
		clean = clean[:MaxAnswerLength]
	}
	return clean
}

// CreateBookingRequest stores a request-a-quote submission as one inbox item.
// Only the fields the teacher collects are read; everything else is ignored.
func CreateBookingRequest(db *gorm.DB, teacherID string, answers map[string]string, now time.Time) (*models.BookingRequest, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	settings, err := GetBookingSettings(db, teacherID)
	if err != nil {
		return nil, err
	}

	fields := models.EnabledFormFields(settings.FormFields)
	values := make(map[models.FormField]string, len(fields))
	var notes strings.Builder
	for _, field := range fields {
		value := sanitizeAnswer(answers[string(field.Name)])
		if value == "" {
			if field.Required {
				return nil, invalid(string(field.Name), "is required")
			}
			continue
		}
		values[field.Name] = value
		fmt.Fprintf(&notes, "%s: %s\n", field.Label, value)
	}

	customer, err := normalizeCustomer(CustomerInput{
		Name:  values[models.FormFieldName],
		Email: values[models.FormFieldEmail],
		Phone: values[models.FormFieldPhone],
	})
	if err != nil {
		var v *ValidationError
		if errors.As(err, &v) {
			v.Field = strings.TrimPrefix(v.Field, "customer.")
		}
		return nil, err
	}

	request := &models.BookingRequest{
		TeacherID: teacherID,
		Customer:  customer,
		Notes:     strings.TrimRight(notes.String(), "\n"),
		Status:    models.StatusRequest,
		Amount:    decimal.Zero,
	}
	request.CreatedAt = now
	if err := db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create booking request: %w", err)
	}
	bookingRequestsCreated.Inc()

	msgFields := map[string]string{
		"teacher_name":   teacher.Name,
		"customer_name":  customer.Name,
		"customer_email": customer.Email,
		"notes":          request.Notes,
	}
	Notifications.Dispatch(Message{To: teacher.Email, Template: TemplateRequestTeacher, Fields: msgFields})
	Notifications.Dispatch(Message{To: customer.Email, Template: TemplateRequestReceived, Fields: msgFields})

	return request, nil
}

// ListBookingRequests returns a teacher's inbox, newest first
func ListBookingRequests(db *gorm.DB, teacherID string, status models.PaymentStatus) ([]models.BookingRequest, error) {
	query := db.Where("teacher_id = ?", teacherID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var requests []models.BookingRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	return requests, nil
}

// GetBookingRequest loads one request, verifying ownership
func GetBookingRequest(db *gorm.DB, teacherID, id string) (*models.BookingRequest, error) {
	var request models.BookingRequest
	if err := db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("booking request", id)
		}
		return nil, fmt.Errorf("failed to load booking request: %w", err)
	}
	return &request, nil
}

// DeleteBookingRequest removes a request outright after verifying ownership
func DeleteBookingRequest(db *gorm.DB, teacherID, id string) error {
	request, err := GetBookingRequest(db, teacherID, id)
	if err != nil {
		return err
	}
	if err := db.Delete(request).Error; err != nil {
		return fmt.Errorf("failed to delete booking request: %w", err)
	}
	return nil
}

// AttachQuote prices a request and moves it to quote-sent. The customer
// contact is never touched. Invoicing and the quote email are best effort:
// their failures are logged and the quote stays saved.
func AttachQuote(ctx context.Context, db *gorm.DB, teacherID, id string, quote QuoteInput, now time.Time) (*models.BookingRequest, error) {
	request, err := GetBookingRequest(db, teacherID, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(models.StatusQuoteSent) {
		return nil, invalid("status", "cannot quote a request that is %s", request.Status)
	}

	description := strings.TrimSpace(quote.Description)
	if description == "" {
		return nil, invalid("description", "is required")
	}
	if !quote.Amount.IsPositive() {
		return nil, invalid("amount", "must be greater than zero")
	}
	if !quote.DurationHours.IsPositive() {
		return nil, invalid("duration_hours", "must be greater than zero")
	}

	amount := quote.Amount.Round(2)
	duration := quote.DurationHours.Round(2)
	quotedAt := now
	updates := map[string]interface{}{
		"status":               models.StatusQuoteSent,
		"amount":               amount,
		"quote_description":    description,
		"quote_duration_hours": duration,
		"quote_notes":          strings.TrimSpace(quote.Notes),
		"quoted_at":            quotedAt,
	}
	if err := db.Model(request).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to attach quote: %w", err)
	}

	request, err = GetBookingRequest(db, teacherID, id)
	if err != nil {
		return nil, err
	}
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}

	if ref, err := Billing.CreateInvoice(ctx, teacher, request); err != nil {
		invoiceFailures.Inc()
		zap.L().Warn("failed to create invoice for quote",
			zap.String("booking_request_id", request.ID),
			zap.Error(err))
	} else if ref != "" {
		if err := db.Model(request).Update("invoice_ref", ref).Error; err != nil {
			zap.L().Warn("failed to store invoice reference", zap.String("booking_request_id", request.ID), zap.Error(err))
		} else {
			request.InvoiceRef = &ref
		}
	}

	fields := map[string]string{
		"teacher_name":   teacher.Name,
		"customer_name":  request.Customer.Name,
		"description":    description,
		"duration_hours": duration.String(),
		"amount":         amount.StringFixed(2),
		"currency":       teacher.Currency,
		"notes":          request.QuoteNotes,
	}
	if request.InvoiceRef != nil {
		fields["invoice_ref"] = *request.InvoiceRef
	}
	Notifications.Dispatch(Message{To: request.Customer.Email, Template: TemplateQuoteSent, Fields: fields})

	return request, nil
}

// MarkRequestPaid closes a quoted request as paid
func MarkRequestPaid(db *gorm.DB, teacherID, id string, now time.Time) (*models.BookingRequest, error) {
	request, err := GetBookingRequest(db, teacherID, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(models.StatusPaid) {
		return nil, invalid("status", "cannot mark a request that is %s as paid", request.Status)
	}
	paidAt := now
	if err := db.Model(request).Updates(map[string]interface{}{
		"status":  models.StatusPaid,
		"paid_at": paidAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to mark request paid: %w", err)
	}
	return GetBookingRequest(db, teacherID, id)
}
