package services

import (
	"lessonbook_app_go/models"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationICS(t *testing.T) {
	teacher := &models.Teacher{Name: "Ana Ruiz", Email: "ana@example.com", Timezone: "America/Bogota"}
	r := &models.ScheduledReservation{
		ID:        "res-1",
		Customer:  models.Customer{Name: "Sam"},
		Date:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "11:30",
		Hours:     decimal.RequireFromString("1.5"),
		Notes:     "bring scales; chapter 2",
	}
	now := time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC)

	ics, err := ReservationICS(teacher, r, now)
	require.NoError(t, err)
	content := string(ics)

	assert.True(t, strings.HasPrefix(content, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, content, "UID:res-1@lessonbook\r\n")
	assert.Contains(t, content, "DTSTAMP:20241220T120000Z\r\n")
	// Bogota is UTC-5
	assert.Contains(t, content, "DTSTART:20250106T150000Z\r\n")
	assert.Contains(t, content, "DTEND:20250106T163000Z\r\n")
	assert.Contains(t, content, `bring scales\; chapter 2`)
	assert.Contains(t, content, "mailto:ana@example.com")
}

func TestReservationICS_InvalidTimezone(t *testing.T) {
	teacher := &models.Teacher{Name: "X", Timezone: "Mars/Olympus"}
	_, err := ReservationICS(teacher, &models.ScheduledReservation{StartTime: "10:00", EndTime: "11:00"}, time.Now())
	assert.Error(t, err)
}
