package handlers

import (
	"lessonbook_app_go/models"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	e := setupServer(t)
	_, token := createTeacherWithSession(t, testDB, "anna")

	createBody := map[string]interface{}{
		"title":       "Morning",
		"day_of_week": 1,
		"start_time":  "09:00",
		"end_time":    "12:00",
		"active_from": "2025-01-01",
	}

	rec := doRequest(t, e, testRequest{method: http.MethodPost, path: "/api/availability", token: token, body: createBody})
	requireStatus(t, rec, http.StatusCreated)
	var window models.AvailabilityWindow
	decodeJSON(t, rec, &window)
	assert.True(t, window.IsActive)
	assert.Equal(t, 1, window.DayOfWeek)

	t.Run("overlapping window is a conflict", func(t *testing.T) {
		overlapping := map[string]interface{}{
			"day_of_week": 1,
			"start_time":  "11:00",
			"end_time":    "13:00",
			"active_from": "2025-02-01",
		}
		rec := doRequest(t, e, testRequest{method: http.MethodPost, path: "/api/availability", token: token, body: overlapping})
		requireStatus(t, rec, http.StatusConflict)
		assert.Equal(t, CodeConflict, decodeError(t, rec).Error)
	})

	t.Run("field errors", func(t *testing.T) {
		tests := []struct {
			name  string
			body  map[string]interface{}
			field string
		}{
			{"missing day", map[string]interface{}{"start_time": "09:00", "end_time": "10:00", "active_from": "2025-01-01"}, "day_of_week"},
			{"day out of range", map[string]interface{}{"day_of_week": 7, "start_time": "09:00", "end_time": "10:00", "active_from": "2025-01-01"}, "day_of_week"},
			{"bad date", map[string]interface{}{"day_of_week": 2, "start_time": "09:00", "end_time": "10:00", "active_from": "01/01/2025"}, "active_from"},
			{"end before start", map[string]interface{}{"day_of_week": 2, "start_time": "10:00", "end_time": "09:00", "active_from": "2025-01-01"}, "end_time"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(t, e, testRequest{method: http.MethodPost, path: "/api/availability", token: token, body: tt.body})
				requireStatus(t, rec, http.StatusBadRequest)
				body := decodeError(t, rec)
				assert.Equal(t, CodeValidationFailed, body.Error)
				assert.Equal(t, tt.field, body.Field)
			})
		}
	})

	t.Run("delete deactivates", func(t *testing.T) {
		rec := doRequest(t, e, testRequest{method: http.MethodDelete, path: "/api/availability/" + window.ID, token: token})
		requireStatus(t, rec, http.StatusOK)

		var listed []models.AvailabilityWindow
		rec = doRequest(t, e, testRequest{method: http.MethodGet, path: "/api/availability", token: token})
		requireStatus(t, rec, http.StatusOK)
		decodeJSON(t, rec, &listed)
		assert.Empty(t, listed)

		rec = doRequest(t, e, testRequest{method: http.MethodGet, path: "/api/availability?include_inactive=true", token: token})
		decodeJSON(t, rec, &listed)
		require.Len(t, listed, 1)
		assert.False(t, listed[0].IsActive)

		rec = doRequest(t, e, testRequest{method: http.MethodPost, path: "/api/availability/" + window.ID + "/activate", token: token})
		requireStatus(t, rec, http.StatusOK)
		decodeJSON(t, rec, &window)
		assert.True(t, window.IsActive)
	})

	t.Run("other teachers cannot touch the window", func(t *testing.T) {
		_, otherToken := createTeacherWithSession(t, testDB, "bruno")
		rec := doRequest(t, e, testRequest{method: http.MethodDelete, path: "/api/availability/" + window.ID, token: otherToken})
		requireStatus(t, rec, http.StatusNotFound)
		assert.Equal(t, CodeNotFound, decodeError(t, rec).Error)
	})
}

func TestBlockedDateHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	e := setupServer(t)
	_, token := createTeacherWithSession(t, testDB, "anna")

	rec := doRequest(t, e, testRequest{
		method: http.MethodPost,
		path:   "/api/blocked-dates",
		token:  token,
		body:   map[string]string{"start_date": "2025-01-06", "reason": "Holiday"},
	})
	requireStatus(t, rec, http.StatusCreated)
	var blocked models.BlockedRange
	decodeJSON(t, rec, &blocked)
	assert.Equal(t, blocked.StartDate, blocked.EndDate)

	rec = doRequest(t, e, testRequest{
		method: http.MethodPost,
		path:   "/api/blocked-dates",
		token:  token,
		body:   map[string]string{"start_date": "2025-02-10", "end_date": "2025-02-01"},
	})
	requireStatus(t, rec, http.StatusBadRequest)
	assert.Equal(t, "end_date", decodeError(t, rec).Field)

	rec = doRequest(t, e, testRequest{method: http.MethodDelete, path: "/api/blocked-dates/" + blocked.ID, token: token})
	requireStatus(t, rec, http.StatusNoContent)

	var listed []models.BlockedRange
	rec = doRequest(t, e, testRequest{method: http.MethodGet, path: "/api/blocked-dates", token: token})
	decodeJSON(t, rec, &listed)
	assert.Empty(t, listed)
}

func TestSettingsHandlers(t *testing.T) {
	testDB := setupTestDB(t)
	e := setupServer(t)
	_, token := createTeacherWithSession(t, testDB, "anna")

	rec := doRequest(t, e, testRequest{method: http.MethodGet, path: "/api/settings", token: token})
	requireStatus(t, rec, http.StatusOK)
	var resp settingsResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, 90, resp.Settings.MaxAdvanceBookingDays)
	assert.True(t, resp.Settings.AllowCustomerBook)
	assert.Len(t, resp.FormFields, len(models.FormFieldRegistry()))
	assert.Empty(t, resp.BlockedDates)

	update := models.DefaultBookingSettings("")
	update.AllowWeekends = false
	update.MaxSessionsPerDay = 3
	update.FormFields.Address = true
	body := map[string]interface{}{
		"min_advance_booking_hours": update.MinAdvanceBookingHours,
		"max_advance_booking_days":  update.MaxAdvanceBookingDays,
		"session_duration_minutes":  update.SessionDurationMinutes,
		"buffer_minutes":            update.BufferMinutes,
		"allow_weekends":            update.AllowWeekends,
		"allow_same_day_booking":    update.AllowSameDayBooking,
		"cancellation_policy_hours": update.CancellationPolicyHours,
		"max_sessions_per_day":      update.MaxSessionsPerDay,
		"allow_customer_book":       update.AllowCustomerBook,
		"allow_manual_book":         update.AllowManualBook,
		"form_fields":               update.FormFields,
		"blocked_dates": []map[string]string{
			{"start_date": "2025-03-01", "end_date": "2025-03-07", "reason": "Vacation"},
		},
	}
	rec = doRequest(t, e, testRequest{method: http.MethodPut, path: "/api/settings", token: token, body: body})
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &resp)
	assert.False(t, resp.Settings.AllowWeekends)
	assert.Equal(t, 3, resp.Settings.MaxSessionsPerDay)
	assert.True(t, resp.Settings.FormFields.Address)
	require.Len(t, resp.BlockedDates, 1)
	assert.Equal(t, "Vacation", resp.BlockedDates[0].Reason)

	t.Run("bad blocked date leaves everything unchanged", func(t *testing.T) {
		body["allow_weekends"] = true
		body["blocked_dates"] = []map[string]string{{"start_date": "March 1st"}}
		rec := doRequest(t, e, testRequest{method: http.MethodPut, path: "/api/settings", token: token, body: body})
		requireStatus(t, rec, http.StatusBadRequest)
		assert.Equal(t, "blocked_dates[0].start_date", decodeError(t, rec).Field)

		rec = doRequest(t, e, testRequest{method: http.MethodGet, path: "/api/settings", token: token})
		decodeJSON(t, rec, &resp)
		assert.False(t, resp.Settings.AllowWeekends)
		assert.Len(t, resp.BlockedDates, 1)
	})
}
