package jobs

import (
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReminderLeadTime is how far ahead of a lesson the reminder goes out
const ReminderLeadTime = 24 * time.Hour

// SendReservationReminders emails customers whose lesson starts within the
// lead time and marks each reservation so it is reminded only once.
// It returns the number of reminders dispatched.
func SendReservationReminders(database *gorm.DB, now time.Time) int {
	logger := zap.L().With(zap.String("job", "reservation_reminders"))
	now = now.UTC()
	cutoff := now.Add(ReminderLeadTime)

	// Dates are stored without a zone, so widen the window by a day on
	// each side and filter on the teacher's local start time below.
	var reservations []models.ScheduledReservation
	err := database.
		Where("payment_status IN ?", []models.PaymentStatus{models.StatusPending, models.StatusPaid, models.StatusPartial}).
		Where("date >= ? AND date <= ?", models.DateOf(now.AddDate(0, 0, -1)), models.DateOf(cutoff.AddDate(0, 0, 1))).
		Where("reminder_sent_at IS NULL").
		Order("date ASC, start_time ASC").
		Find(&reservations).Error
	if err != nil {
		logger.Error("failed to load reservations for reminders", zap.Error(err))
		return 0
	}

	teachers := make(map[string]*models.Teacher)
	sent := 0
	for i := range reservations {
		r := &reservations[i]
		teacher, ok := teachers[r.TeacherID]
		if !ok {
			teacher, err = services.GetTeacherByID(database, r.TeacherID)
			if err != nil {
				logger.Warn("skipping reminder for unknown teacher", zap.String("reservation_id", r.ID), zap.Error(err))
				teachers[r.TeacherID] = nil
				continue
			}
			teachers[r.TeacherID] = teacher
		}
		if teacher == nil {
			continue
		}

		startsAt := r.StartsAt(teacher.Location())
		if startsAt.Before(now) || startsAt.After(cutoff) {
			continue
		}

		services.Notifications.Dispatch(services.Message{
			To:       r.Customer.Email,
			Template: services.TemplateReservationReminder,
			Fields: map[string]string{
				"teacher_name":  teacher.Name,
				"customer_name": r.Customer.Name,
				"date":          r.Date.Format("Monday, January 2, 2006"),
				"start_time":    r.StartTime,
				"end_time":      r.EndTime,
			},
		})

		if err := database.Model(r).Update("reminder_sent_at", now).Error; err != nil {
			logger.Error("failed to mark reminder sent", zap.String("reservation_id", r.ID), zap.Error(err))
			continue
		}
		sent++
	}

	logger.Info("reservation reminders completed", zap.Int("candidates", len(reservations)), zap.Int("sent", sent))
	return sent
}
