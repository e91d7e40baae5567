package services

import (
	"fmt"
	"lessonbook_app_go/models"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDate parses a date string in typical formats (YYYY-MM-DD)
func ParseDate(dateStr string) (time.Time, error) {
	parsedTime, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: expected YYYY-MM-DD")
	}
	return parsedTime, nil
}

// FormatDate renders a stored date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// TodayIn returns the calendar date of now in loc
func TodayIn(now time.Time, loc *time.Location) time.Time {
	return models.DateOf(now.In(loc))
}

// TimeOfDay is a wall-clock time in minutes after midnight
type TimeOfDay int

// MinutesPerDay bounds TimeOfDay; 24:00 is accepted as an end of day
const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses a 24h "HH:MM" string
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the time as "HH:MM"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// HoursBetween returns the wall-clock delta between two times of day in hours
func HoursBetween(start, end TimeOfDay) decimal.Decimal {
	return decimal.NewFromInt(int64(end - start)).Div(decimal.NewFromInt(60)).Round(2)
}

// CostFor multiplies hours by the teacher's rate, or returns zero when no rate is published
func CostFor(teacher *models.Teacher, hours decimal.Decimal) decimal.Decimal {
	if teacher == nil || !teacher.HasRate() {
		return decimal.Zero
	}
	return hours.Mul(*teacher.HourlyRate).Round(2)
}
var decimalHundred = decimal.NewFromInt(100)
