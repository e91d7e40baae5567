package services

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database. A single pooled connection
// keeps every goroutine on the same memory database and serialises writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared&_busy_timeout=5000"
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db.Models()...))
	return database
}

// createTestTeacher inserts a teacher with the given hourly rate (nil for none)
func createTestTeacher(t *testing.T, database *gorm.DB, subdomain string, rate *decimal.Decimal) *models.Teacher {
	t.Helper()
	teacher := &models.Teacher{
		Name:       "Teacher " + subdomain,
		Email:      subdomain + "@example.com",
		Password:   "not-a-real-hash",
		Subdomain:  subdomain,
		Timezone:   "UTC",
		HourlyRate: rate,
		IsActive:   true,
	}
	require.NoError(t, database.Create(teacher).Error)
	return teacher
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}
