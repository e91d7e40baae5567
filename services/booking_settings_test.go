package services

import (
	"lessonbook_app_go/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBookingSettings_MaterializesDefaults(t *testing.T) {
	database := setupTestDB(t)
	teacher := createTestTeacher(t, database, "settings", nil)

	settings, err := GetBookingSettings(database, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, settings.MaxAdvanceBookingDays)
	assert.True(t, settings.AllowWeekends)
	assert.False(t, settings.AllowSameDayBooking)
	assert.True(t, settings.FormFields.Phone)

	again, err := GetBookingSettings(database, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, settings.ID, again.ID)

	var count int64
	database.Model(&models.BookingSettings{}).Where("teacher_id = ?", teacher.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSaveBookingSettings(t *testing.T) {
	database := setupTestDB(t)
	teacher := createTestTeacher(t, database, "save-settings", nil)

	_, err := CreateBlockedRange(database, teacher.ID, BlockedRangeInput{StartDate: mustDate(t, "2025-02-01"), Reason: "old"})
	require.NoError(t, err)

	t.Run("false and zero values persist", func(t *testing.T) {
		s := models.DefaultBookingSettings(teacher.ID)
		s.AllowWeekends = false
		s.AllowCustomerBook = false
		s.MaxAdvanceBookingDays = 0
		s.FormFields = models.FormFieldToggles{Address: true}

		_, err := SaveBookingSettings(database, teacher.ID, s, nil)
		require.NoError(t, err)

		stored, err := GetBookingSettings(database, teacher.ID)
		require.NoError(t, err)
		assert.False(t, stored.AllowWeekends)
		assert.False(t, stored.AllowCustomerBook)
		assert.Equal(t, 0, stored.MaxAdvanceBookingDays)
		assert.False(t, stored.FormFields.Phone)
		assert.True(t, stored.FormFields.Address)

		ranges, err := ListBlockedRanges(database, teacher.ID)
		require.NoError(t, err)
		assert.Len(t, ranges, 1, "nil blocked list leaves ranges alone")
	})

	t.Run("blocked ranges are replaced together", func(t *testing.T) {
		s := models.DefaultBookingSettings(teacher.ID)
		_, err := SaveBookingSettings(database, teacher.ID, s, []BlockedRangeInput{
			{StartDate: mustDate(t, "2025-03-01"), EndDate: mustDate(t, "2025-03-05"), Reason: "Trip"},
			{StartDate: mustDate(t, "2025-04-10")},
		})
		require.NoError(t, err)

		ranges, err := ListBlockedRanges(database, teacher.ID)
		require.NoError(t, err)
		require.Len(t, ranges, 2)
		assert.Equal(t, "Trip", ranges[0].Reason)
		assert.Equal(t, "2025-04-10", FormatDate(ranges[1].EndDate))
	})

	t.Run("invalid blocked range leaves everything untouched", func(t *testing.T) {
		s := models.DefaultBookingSettings(teacher.ID)
		s.AllowWeekends = false
		_, err := SaveBookingSettings(database, teacher.ID, s, []BlockedRangeInput{
			{StartDate: mustDate(t, "2025-05-10"), EndDate: mustDate(t, "2025-05-01")},
		})
		require.Error(t, err)
		var v *ValidationError
		require.ErrorAs(t, err, &v)
		assert.Equal(t, "blocked_dates[0].end_date", v.Field)

		stored, err := GetBookingSettings(database, teacher.ID)
		require.NoError(t, err)
		assert.True(t, stored.AllowWeekends)

		ranges, err := ListBlockedRanges(database, teacher.ID)
		require.NoError(t, err)
		assert.Len(t, ranges, 2)
	})

	t.Run("negative values rejected", func(t *testing.T) {
		s := models.DefaultBookingSettings(teacher.ID)
		s.MaxSessionsPerDay = -1
		_, err := SaveBookingSettings(database, teacher.ID, s, nil)
		assert.True(t, IsValidation(err))
	})
}

func TestBlockedRanges(t *testing.T) {
	database := setupTestDB(t)
	teacher := createTestTeacher(t, database, "blocked", nil)

	single, err := CreateBlockedRange(database, teacher.ID, BlockedRangeInput{StartDate: mustDate(t, "2025-01-06")})
	require.NoError(t, err)
	assert.Equal(t, single.StartDate, single.EndDate)

	_, err = CreateBlockedRange(database, teacher.ID, BlockedRangeInput{
		StartDate: mustDate(t, "2025-02-01"),
		EndDate:   mustDate(t, "2025-02-10"),
	})
	require.NoError(t, err)

	t.Run("between filters by overlap", func(t *testing.T) {
		ranges, err := ListBlockedRangesBetween(database, teacher.ID, mustDate(t, "2025-02-05"), mustDate(t, "2025-02-28"))
		require.NoError(t, err)
		require.Len(t, ranges, 1)
		assert.Equal(t, "2025-02-01", FormatDate(ranges[0].StartDate))
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, err := CreateBlockedRange(database, teacher.ID, BlockedRangeInput{
			StartDate: mustDate(t, "2025-03-10"),
			EndDate:   mustDate(t, "2025-03-01"),
		})
		assert.True(t, IsValidation(err))
	})

	t.Run("delete checks ownership", func(t *testing.T) {
		other := createTestTeacher(t, database, "blocked-other", nil)
		assert.True(t, IsNotFound(DeleteBlockedRange(database, other.ID, single.ID)))
		require.NoError(t, DeleteBlockedRange(database, teacher.ID, single.ID))
		assert.True(t, IsNotFound(DeleteBlockedRange(database, teacher.ID, single.ID)))
	})
}
