package handlers

import (
	"bytes"
	"encoding/json"
	"lessonbook_app_go/config"
	"lessonbook_app_go/db"
	"lessonbook_app_go/middleware"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testBaseDomain = "lessonbook.test"

// testNow is a Friday; the fixture window opens on the following Monday weeks
var testNow = time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique shared memory name isolates tests while letting async writers reach the same store
	dsn := "file:handlers_" + uuid.New().String() + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		services.Notifications.Wait()
		sqlDB.Close()
	})

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	previous := db.DB
	db.DB = testDB
	t.Cleanup(func() { db.DB = previous })
	return testDB
}

// setupServer builds the full API with a fixed clock
func setupServer(t *testing.T) *echo.Echo {
	t.Helper()
	previousClock := services.DefaultClock
	services.DefaultClock = services.FixedClock(testNow)
	t.Cleanup(func() { services.DefaultClock = previousClock })

	cfg := &config.Config{Environment: "test", BaseDomain: testBaseDomain}
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewRequestValidator()
	e.Use(middleware.InjectConfig(cfg))
	RegisterRoutes(e, cfg, middleware.NewLimiters(middleware.NewMemoryRateLimitStore()))
	return e
}

type testRequest struct {
	method string
	path   string
	body   interface{}
	token  string
	host   string
	header map[string]string
}

func doRequest(t *testing.T, e *echo.Echo, r testRequest) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := r.body.(type) {
	case nil:
	case []byte:
		payload = b
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(r.method, r.path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	if r.host != "" {
		req.Host = r.host
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	decodeJSON(t, rec, &body)
	return body
}

// createTeacherWithSession registers a teacher and logs them in directly
func createTeacherWithSession(t *testing.T, testDB *gorm.DB, subdomain string) (*models.Teacher, string) {
	t.Helper()
	teacher, err := services.CreateTeacher(testDB, services.TeacherInput{
		Name:      "Teacher " + subdomain,
		Email:     subdomain + "@example.com",
		Password:  "correct horse battery",
		Subdomain: subdomain,
		Timezone:  "UTC",
	})
	require.NoError(t, err)
	session, err := services.CreateSession(testDB, teacher.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	return teacher, session.Token
}

// createMondayWindow opens Mondays 09:00-12:00 from 2025-01-01
func createMondayWindow(t *testing.T, testDB *gorm.DB, teacherID string) *models.AvailabilityWindow {
	t.Helper()
	window, err := services.CreateWindow(testDB, teacherID, services.WindowInput{
		Title:      "Morning",
		DayOfWeek:  int(time.Monday),
		StartTime:  "09:00",
		EndTime:    "12:00",
		ActiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
	})
	require.NoError(t, err)
	return window
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
