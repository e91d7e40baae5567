package jobs

import (
	"fmt"
	"lessonbook_app_go/config"
	"lessonbook_app_go/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartScheduler registers the periodic jobs and starts the cron runner.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{})))

	if _, err := c.AddFunc("@hourly", func() {
		if err := services.CleanupExpiredSessions(database); err != nil {
			zap.L().Error("session cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	if cfg.ReminderSchedule != "" {
		if _, err := c.AddFunc(cfg.ReminderSchedule, func() {
			SendReservationReminders(database, services.DefaultClock.Now())
		}); err != nil {
			return nil, fmt.Errorf("invalid reminder schedule %q: %w", cfg.ReminderSchedule, err)
		}
	}

	c.Start()
	zap.L().Info("scheduler started", zap.String("reminder_schedule", cfg.ReminderSchedule))
	return c, nil
}

// cronLogger routes cron's own logging through zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().With(zap.Error(err)).Errorw(msg, keysAndValues...)
}
