package jobs

import (
	"context"
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []services.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg services.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func setupRemindersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:jobs_" + uuid.New().String() + "?mode=memory&cache=shared"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db.Models()...))
	return database
}

func TestSendReservationReminders(t *testing.T) {
	database := setupRemindersTestDB(t)
	mailer := &recordingMailer{}
	previous := services.Notifications
	services.SetNotifier(services.NewNotifier(mailer))
	t.Cleanup(func() { services.SetNotifier(previous) })

	teacher := &models.Teacher{
		Name:      "Ana Teacher",
		Email:     "ana@example.com",
		Password:  "hash",
		Subdomain: "ana",
		Timezone:  "UTC",
		IsActive:  true,
	}
	require.NoError(t, database.Create(teacher).Error)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	reservation := func(date time.Time, start, end string, status models.PaymentStatus) *models.ScheduledReservation {
		r := &models.ScheduledReservation{
			TeacherID:     teacher.ID,
			Customer:      models.Customer{Name: "Sam Student", Email: "sam@example.com"},
			Date:          date,
			StartTime:     start,
			EndTime:       end,
			Hours:         decimal.NewFromInt(1),
			AmountPaid:    decimal.Zero,
			PaymentStatus: status,
			Source:        models.SourceCheckout,
		}
		require.NoError(t, database.Create(r).Error)
		return r
	}

	tomorrow := reservation(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), "08:00", "09:00", models.StatusPending)
	later := reservation(time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC), "10:00", "11:00", models.StatusPaid)
	refunded := reservation(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "15:00", "16:00", models.StatusRefunded)
	past := reservation(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "07:00", "08:00", models.StatusPaid)

	sent := SendReservationReminders(database, now)
	services.Notifications.Wait()

	assert.Equal(t, 1, sent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "sam@example.com", mailer.sent[0].To)
	assert.Equal(t, services.TemplateReservationReminder, mailer.sent[0].Template)
	assert.Equal(t, "08:00", mailer.sent[0].Fields["start_time"])

	reload := func(r *models.ScheduledReservation) *models.ScheduledReservation {
		var out models.ScheduledReservation
		require.NoError(t, database.First(&out, "id = ?", r.ID).Error)
		return &out
	}
	assert.NotNil(t, reload(tomorrow).ReminderSentAt)
	assert.Nil(t, reload(later).ReminderSentAt)
	assert.Nil(t, reload(refunded).ReminderSentAt)
	assert.Nil(t, reload(past).ReminderSentAt)

	t.Run("second run sends nothing", func(t *testing.T) {
		assert.Equal(t, 0, SendReservationReminders(database, now))
	})
}
