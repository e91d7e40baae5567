package services

import (
	"errors"
	"fmt"
	"lessonbook_app_go/models"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerInput is the contact data a visitor or teacher supplies
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// CartEntry is one checkout line: a window occurrence with optional custom times
type CartEntry struct {
	WindowID  string
	Date      string
	StartTime string
	EndTime   string
}

// BatchResult is the outcome of a checkout
type BatchResult struct {
	Reservations []models.ScheduledReservation `json:"reservations"`
	TotalHours   decimal.Decimal               `json:"total_hours"`
	TotalAmount  decimal.Decimal               `json:"total_amount"`
}

// ManualReservationInput is a booking the teacher enters directly
type ManualReservationInput struct {
	Customer  CustomerInput
	Date      time.Time
	StartTime string
	EndTime   string
	Amount    *decimal.Decimal
	Status    models.PaymentStatus
	Notes     string
}

// ReservationFilter narrows ListReservations. Zero values match everything.
type ReservationFilter struct {
	From   *time.Time
	To     *time.Time
	Status models.PaymentStatus
}

func normalizeCustomer(in CustomerInput) (models.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return models.Customer{}, invalid("customer.name", "is required")
	}
	if !validEmail(email) {
		return models.Customer{}, invalid("customer.email", "must be a valid email address")
	}
	customer := models.Customer{Name: name, Email: email}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		customer.Phone = &phone
	}
	return customer, nil
}

// CreateReservations checks out a cart for a visitor. Every entry is
// validated against its window and the current availability, then all rows
// are inserted in one transaction; the slot unique index decides conflicts,
// so either the whole batch is stored or none of it is.
func CreateReservations(db *gorm.DB, teacherID string, customerIn CustomerInput, entries []CartEntry, notes string, now time.Time) (*BatchResult, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	settings, err := GetBookingSettings(db, teacherID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowCustomerBook {
		return nil, invalid("booking", "online booking is disabled for this teacher")
	}

	customer, err := normalizeCustomer(customerIn)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalid("entries", "select at least one time slot")
	}

	cart, err := buildCart(db, teacherID, entries)
	if err != nil {
		return nil, err
	}
	slots := cart.Entries()

	if err := checkSlotsStillOpen(db, teacher, slots, now); err != nil {
		return nil, err
	}

	loc := teacher.Location()
	earliest := now.Add(time.Duration(settings.MinAdvanceBookingHours) * time.Hour)
	notes = strings.TrimSpace(notes)

	reservations := make([]models.ScheduledReservation, 0, len(slots))
	for _, slot := range slots {
		date, _ := ParseDate(slot.Date)
		windowID := slot.WindowID
		r := models.ScheduledReservation{
			TeacherID:     teacherID,
			Customer:      customer,
			Date:          date,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			Hours:         slot.Hours,
			AmountPaid:    CostFor(teacher, slot.Hours),
			PaymentStatus: models.StatusPending,
			Notes:         notes,
			Source:        models.SourceCheckout,
			WindowID:      &windowID,
		}
		if r.StartsAt(loc).Before(earliest) {
			return nil, invalid("start_time", "%s %s must be booked at least %d hours in advance",
				slot.Date, slot.StartTime, settings.MinAdvanceBookingHours)
		}
		reservations = append(reservations, r)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := checkDailyLimit(tx, teacherID, settings.MaxSessionsPerDay, reservations); err != nil {
			return err
		}
		for i := range reservations {
			if err := insertReservation(tx, &reservations[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Reservations: reservations, TotalHours: decimal.Zero, TotalAmount: decimal.Zero}
	for _, r := range reservations {
		result.TotalHours = result.TotalHours.Add(r.Hours)
		result.TotalAmount = result.TotalAmount.Add(r.AmountPaid)
	}
	reservationsCreated.WithLabelValues(models.SourceCheckout).Add(float64(len(reservations)))

	notifyReservationsCreated(teacher, customer, result, notes)
	return result, nil
}

// CartQuote prices a cart before checkout
type CartQuote struct {
	Entries     []SelectedSlot  `json:"entries"`
	TotalHours  decimal.Decimal `json:"total_hours"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// PreviewCart validates and prices selections without storing anything.
// Slots that are no longer open are refused the same way checkout would.
func PreviewCart(db *gorm.DB, teacherID string, entries []CartEntry, now time.Time) (*CartQuote, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, invalid("entries", "select at least one time slot")
	}
	cart, err := buildCart(db, teacherID, entries)
	if err != nil {
		return nil, err
	}
	slots := cart.Entries()
	if err := checkSlotsStillOpen(db, teacher, slots, now); err != nil {
		return nil, err
	}

	hours := cart.TotalHours()
	return &CartQuote{
		Entries:     slots,
		TotalHours:  hours,
		TotalAmount: CostFor(teacher, hours),
		Currency:    teacher.Currency,
	}, nil
}

// buildCart validates every entry against its window and folds duplicates of
// the same window occurrence, the last one winning.
func buildCart(db *gorm.DB, teacherID string, entries []CartEntry) (*Cart, error) {
	windows := make(map[string]*models.AvailabilityWindow)
	cart := &Cart{}
	for i, entry := range entries {
		date, err := ParseDate(entry.Date)
		if err != nil {
			return nil, invalid(fmt.Sprintf("entries[%d].date", i), "%v", err)
		}
		window, ok := windows[entry.WindowID]
		if !ok {
			window, err = GetWindow(db, teacherID, entry.WindowID)
			if err != nil {
				if IsNotFound(err) {
					return nil, invalid(fmt.Sprintf("entries[%d].window_id", i), "unknown availability window")
				}
				return nil, err
			}
			windows[entry.WindowID] = window
		}
		slot, err := SelectCustomTime(window, date, entry.StartTime, entry.EndTime)
		if err != nil {
			var v *ValidationError
			if errors.As(err, &v) {
				v.Field = fmt.Sprintf("entries[%d].%s", i, v.Field)
			}
			return nil, err
		}
		cart.Select(*slot)
	}
	return cart, nil
}

// checkSlotsStillOpen re-resolves the dates in the cart so a window that
// was deactivated or blocked after the visitor picked it is refused.
func checkSlotsStillOpen(db *gorm.DB, teacher *models.Teacher, slots []SelectedSlot, now time.Time) error {
	var first, last time.Time
	for i, slot := range slots {
		d, _ := ParseDate(slot.Date)
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	in, err := loadResolveInput(db, teacher, first, last, now)
	if err != nil {
		return err
	}
	days := ResolveDays(in)

	for _, slot := range slots {
		d, _ := ParseDate(slot.Date)
		open := false
		for _, interval := range IntervalsOn(days, d) {
			if interval.WindowID == slot.WindowID {
				open = true
				break
			}
		}
		if !open {
			bookingConflicts.Inc()
			return &ConflictError{
				Resource: "slot",
				Message:  fmt.Sprintf("%s %s-%s is no longer available", slot.Date, slot.StartTime, slot.EndTime),
			}
		}
	}
	return nil
}

// checkDailyLimit enforces MaxSessionsPerDay inside the write transaction
func checkDailyLimit(tx *gorm.DB, teacherID string, limit int, batch []models.ScheduledReservation) error {
	if limit <= 0 {
		return nil
	}
	perDay := make(map[string]int)
	for _, r := range batch {
		perDay[FormatDate(r.Date)]++
	}
	for day, added := range perDay {
		date, _ := ParseDate(day)
		var existing int64
		if err := tx.Model(&models.ScheduledReservation{}).
			Where("teacher_id = ? AND date = ? AND payment_status <> ?", teacherID, date, models.StatusRefunded).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to count reservations: %w", err)
		}
		if int(existing)+added > limit {
			bookingConflicts.Inc()
			return &ConflictError{
				Resource: "slot",
				Message:  fmt.Sprintf("%s is fully booked (at most %d sessions per day)", day, limit),
			}
		}
	}
	return nil
}

// insertReservation writes one row, translating a slot index violation into
// a ConflictError that names the slot.
func insertReservation(tx *gorm.DB, r *models.ScheduledReservation) error {
	if err := tx.Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			bookingConflicts.Inc()
			return &ConflictError{
				Resource: "slot",
				Message:  fmt.Sprintf("%s at %s is already booked", FormatDate(r.Date), r.StartTime),
			}
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func notifyReservationsCreated(teacher *models.Teacher, customer models.Customer, result *BatchResult, notes string) {
	var lines strings.Builder
	for _, r := range result.Reservations {
		fmt.Fprintf(&lines, "- %s %s-%s (%s h)\n", r.Date.Format("Mon 2 Jan 2006"), r.StartTime, r.EndTime, r.Hours.String())
	}
	fields := map[string]string{
		"teacher_name":   teacher.Name,
		"customer_name":  customer.Name,
		"customer_email": customer.Email,
		"slots":          lines.String(),
		"total_hours":    result.TotalHours.String(),
		"currency":       teacher.Currency,
		"notes":          notes,
	}
	if teacher.HasRate() {
		fields["total_amount"] = result.TotalAmount.StringFixed(2)
	}

	Notifications.Dispatch(Message{To: teacher.Email, Template: TemplateReservationTeacher, Fields: fields})
	Notifications.Dispatch(Message{To: customer.Email, Template: TemplateReservationConfirmation, Fields: fields})
}

// CreateManualReservation stores a booking entered by the teacher. No
// window is required; the slot index still guards double booking.
func CreateManualReservation(db *gorm.DB, teacherID string, input ManualReservationInput) (*models.ScheduledReservation, error) {
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	settings, err := GetBookingSettings(db, teacherID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowManualBook {
		return nil, invalid("booking", "manual booking is disabled in your settings")
	}

	customer, err := normalizeCustomer(input.Customer)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, invalid("date", "is required")
	}
	start, err := ParseTimeOfDay(input.StartTime)
	if err != nil {
		return nil, invalid("start_time", "%v", err)
	}
	end, err := ParseTimeOfDay(input.EndTime)
	if err != nil {
		return nil, invalid("end_time", "%v", err)
	}
	if end <= start {
		return nil, invalid("end_time", "must be after start time")
	}

	status := input.Status
	if status == "" {
		status = models.StatusPaid
	}
	if !status.IsScheduledStatus() {
		return nil, invalid("status", "%q is not a valid reservation status", status)
	}

	hours := HoursBetween(start, end)
	amount := CostFor(teacher, hours)
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, invalid("amount", "must not be negative")
		}
		amount = input.Amount.Round(2)
	}

	r := &models.ScheduledReservation{
		TeacherID:     teacherID,
		Customer:      customer,
		Date:          models.DateOf(input.Date),
		StartTime:     start.String(),
		EndTime:       end.String(),
		Hours:         hours,
		AmountPaid:    amount,
		PaymentStatus: status,
		Notes:         strings.TrimSpace(input.Notes),
		Source:        models.SourceManual,
	}
	if err := insertReservation(db, r); err != nil {
		return nil, err
	}
	reservationsCreated.WithLabelValues(models.SourceManual).Inc()
	return r, nil
}

// ListReservations returns a teacher's reservations ordered by date and time
func ListReservations(db *gorm.DB, teacherID string, filter ReservationFilter) ([]models.ScheduledReservation, error) {
	query := db.Where("teacher_id = ?", teacherID)
	if filter.From != nil {
		query = query.Where("date >= ?", models.DateOf(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("date <= ?", models.DateOf(*filter.To))
	}
	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}

	var reservations []models.ScheduledReservation
	if err := query.Order("date ASC, start_time ASC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// GetReservation loads one reservation, verifying ownership
func GetReservation(db *gorm.DB, teacherID, id string) (*models.ScheduledReservation, error) {
	var r models.ScheduledReservation
	if err := db.Where("id = ? AND teacher_id = ?", id, teacherID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("reservation", id)
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return &r, nil
}

// DeleteReservation removes a reservation outright after verifying ownership
func DeleteReservation(db *gorm.DB, teacherID, id string) error {
	r, err := GetReservation(db, teacherID, id)
	if err != nil {
		return err
	}
	if err := db.Delete(r).Error; err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	return nil
}

// UpdateReservationStatus moves a reservation along the payment state
// machine. amount, when given, replaces the amount paid.
func UpdateReservationStatus(db *gorm.DB, teacherID, id string, next models.PaymentStatus, amount *decimal.Decimal) (*models.ScheduledReservation, error) {
	r, err := GetReservation(db, teacherID, id)
	if err != nil {
		return nil, err
	}
	if !next.IsScheduledStatus() {
		return nil, invalid("status", "%q is not a valid reservation status", next)
	}
	if !r.PaymentStatus.CanTransitionTo(next) {
		return nil, invalid("status", "cannot move from %s to %s", r.PaymentStatus, next)
	}

	updates := map[string]interface{}{"payment_status": next}
	if amount != nil {
		if amount.IsNegative() {
			return nil, invalid("amount", "must not be negative")
		}
		updates["amount_paid"] = amount.Round(2)
	}
	if err := db.Model(r).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	zap.L().Info("reservation status changed",
		zap.String("reservation_id", r.ID),
		zap.String("status", string(next)))
	return GetReservation(db, teacherID, id)
}
