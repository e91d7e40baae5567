package services

import (
	"lessonbook_app_go/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWindow(t *testing.T) {
	database := setupTestDB(t)
	teacher := createTestTeacher(t, database, "windows", nil)

	base := WindowInput{
		Title:      "Morning",
		DayOfWeek:  int(time.Monday),
		StartTime:  "09:00",
		EndTime:    "12:00",
		ActiveFrom: mustDate(t, "2025-01-01"),
		IsActive:   true,
	}
	window, err := CreateWindow(database, teacher.ID, base)
	require.NoError(t, err)
	assert.NotEmpty(t, window.ID)

	t.Run("validation", func(t *testing.T) {
		until := mustDate(t, "2024-12-01")
		cases := map[string]WindowInput{
			"bad weekday":      {DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00", ActiveFrom: base.ActiveFrom},
			"end before start": {DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00", ActiveFrom: base.ActiveFrom},
			"bad time":         {DayOfWeek: 1, StartTime: "9am", EndTime: "10:00", ActiveFrom: base.ActiveFrom},
			"no active from":   {DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
			"inverted range":   {DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", ActiveFrom: base.ActiveFrom, ActiveUntil: &until},
		}
		for name, input := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := CreateWindow(database, teacher.ID, input)
				assert.True(t, IsValidation(err), "got %v", err)
			})
		}
	})

	t.Run("overlapping window on same day is rejected", func(t *testing.T) {
		overlap := base
		overlap.Title = "Late morning"
		overlap.StartTime = "11:00"
		overlap.EndTime = "13:00"
		_, err := CreateWindow(database, teacher.ID, overlap)
		require.Error(t, err)
		assert.True(t, IsConflict(err))
		assert.Contains(t, err.Error(), "Monday")
		assert.Contains(t, err.Error(), "Morning")
	})

	t.Run("adjacent window is fine", func(t *testing.T) {
		adjacent := base
		adjacent.StartTime = "12:00"
		adjacent.EndTime = "14:00"
		_, err := CreateWindow(database, teacher.ID, adjacent)
		assert.NoError(t, err)
	})

	t.Run("disjoint date ranges may share hours", func(t *testing.T) {
		later := base
		later.ActiveFrom = mustDate(t, "2024-01-01")
		until := mustDate(t, "2024-12-31")
		later.ActiveUntil = &until
		_, err := CreateWindow(database, teacher.ID, later)
		assert.NoError(t, err)
	})

	t.Run("other weekday may share hours", func(t *testing.T) {
		tuesday := base
		tuesday.DayOfWeek = int(time.Tuesday)
		_, err := CreateWindow(database, teacher.ID, tuesday)
		assert.NoError(t, err)
	})

	t.Run("other teacher is independent", func(t *testing.T) {
		other := createTestTeacher(t, database, "other-windows", nil)
		_, err := CreateWindow(database, other.ID, base)
		assert.NoError(t, err)
	})
}

func TestWindowLifecycle(t *testing.T) {
	database := setupTestDB(t)
	teacher := createTestTeacher(t, database, "lifecycle", nil)

	input := WindowInput{
		DayOfWeek:  int(time.Wednesday),
		StartTime:  "09:00",
		EndTime:    "11:00",
		ActiveFrom: mustDate(t, "2025-01-01"),
		IsActive:   true,
	}
	window, err := CreateWindow(database, teacher.ID, input)
	require.NoError(t, err)

	t.Run("update keeps itself out of the overlap check", func(t *testing.T) {
		input.EndTime = "11:30"
		updated, err := UpdateWindow(database, teacher.ID, window.ID, input)
		require.NoError(t, err)
		assert.Equal(t, "11:30", updated.EndTime)
	})

	t.Run("deactivate hides the window", func(t *testing.T) {
		_, err := DeactivateWindow(database, teacher.ID, window.ID)
		require.NoError(t, err)

		active, err := ListWindows(database, teacher.ID, false)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := ListWindows(database, teacher.ID, true)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.False(t, all[0].IsActive)
	})

	t.Run("inactive window does not block a new one", func(t *testing.T) {
		_, err := CreateWindow(database, teacher.ID, input)
		require.NoError(t, err)
	})

	t.Run("reactivation rechecks overlap", func(t *testing.T) {
		_, err := ActivateWindow(database, teacher.ID, window.ID)
		assert.True(t, IsConflict(err))

		var stored models.AvailabilityWindow
		require.NoError(t, database.First(&stored, "id = ?", window.ID).Error)
		assert.False(t, stored.IsActive)
	})

	t.Run("other teacher cannot touch it", func(t *testing.T) {
		other := createTestTeacher(t, database, "intruder", nil)
		_, err := DeactivateWindow(database, other.ID, window.ID)
		assert.True(t, IsNotFound(err))
	})
}
