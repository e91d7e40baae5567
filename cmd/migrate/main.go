package main

import (
	"lessonbook_app_go/config"
	"lessonbook_app_go/db"
	"lessonbook_app_go/logger"
	"lessonbook_app_go/models"
	"log"

	"go.uber.org/zap"
)

// migrate applies the schema and backfills a settings row for every teacher
// that has none, so existing tenants start from the documented defaults.
func main() {
	// Load configuration
	cfg := config.Load()

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLogger.Sync()
	zap.ReplaceGlobals(appLogger)

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		zap.L().Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(db.Models()...); err != nil {
		zap.L().Fatal("failed to run migrations", zap.Error(err))
	}

	var teachers []models.Teacher
	if err := db.DB.
		Where("id NOT IN (?)", db.DB.Model(&models.BookingSettings{}).Select("teacher_id")).
		Find(&teachers).Error; err != nil {
		zap.L().Fatal("failed to find teachers without settings", zap.Error(err))
	}

	if len(teachers) == 0 {
		zap.L().Info("every teacher already has booking settings")
		return
	}

	zap.L().Info("backfilling booking settings", zap.Int("teachers", len(teachers)))
	for i, teacher := range teachers {
		settings := models.DefaultBookingSettings(teacher.ID)
		if err := db.DB.Create(&settings).Error; err != nil {
			zap.L().Error("failed to create booking settings",
				zap.String("teacher_id", teacher.ID),
				zap.Error(err))
			continue
		}
		zap.L().Info("created booking settings",
			zap.Int("n", i+1),
			zap.String("subdomain", teacher.Subdomain))
	}
}
