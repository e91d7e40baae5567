package services

import (
	"lessonbook_app_go/models"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{
			name:     "Valid date",
			input:    "2026-01-27",
			expected: time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantErr:  false,
		},
		{
			name:    "Invalid format",
			input:   "27-01-2026",
			wantErr: true,
		},
		{
			name:    "Invalid day",
			input:   "2026-01-32",
			wantErr: true,
		},
		{
			name:    "Empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{input: "00:00", minutes: 0},
		{input: "09:30", minutes: 570},
		{input: "23:59", minutes: 1439},
		{input: "24:00", minutes: 1440},
		{input: "24:30", wantErr: true},
		{input: "9:30", wantErr: true},
		{input: "09:60", wantErr: true},
		{input: "ab:cd", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, TimeOfDay(tt.minutes), got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestHoursAndCost(t *testing.T) {
	start, _ := ParseTimeOfDay("09:00")
	end, _ := ParseTimeOfDay("10:30")

	hours := HoursBetween(start, end)
	assert.Equal(t, "1.5", hours.String())

	rate := decimal.NewFromInt(40)
	teacher := &models.Teacher{HourlyRate: &rate}
	assert.Equal(t, "60.00", CostFor(teacher, hours).StringFixed(2))

	assert.True(t, CostFor(&models.Teacher{}, hours).IsZero(), "no published rate means no cost")
}

func TestTodayIn(t *testing.T) {
	// 02:00 UTC on the 6th is still the 5th in New York
	now := time.Date(2025, 1, 6, 2, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), TodayIn(now, ny))
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), TodayIn(now, time.UTC))
}
