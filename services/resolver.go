package services

import (
	"lessonbook_app_go/models"
	"sort"
	"time"

	"gorm.io/gorm"
)

// MaxResolveRangeDays caps how many days one availability query may span
const MaxResolveRangeDays = 366

// OpenInterval is one bookable window occurrence on a date. Windows on the
// same date are never merged so each keeps its own title.
type OpenInterval struct {
	WindowID  string `json:"window_id"`
	Title     string `json:"title,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// DayAvailability lists the open intervals of one calendar date
type DayAvailability struct {
	Date      string         `json:"date"`
	DayOfWeek int            `json:"day_of_week"`
	Intervals []OpenInterval `json:"intervals"`
}

// ResolveInput is everything the resolver needs; it touches no storage
type ResolveInput struct {
	RangeStart time.Time
	RangeEnd   time.Time
	Windows    []models.AvailabilityWindow
	Blocked    []models.BlockedRange
	Settings   models.BookingSettings
	// Today is the current calendar date in the teacher's time zone
	Today time.Time
}

// ResolveDays turns windows, blocked ranges and policy into the open
// intervals of every date in [RangeStart, RangeEnd]. Dates without any
// interval are still listed, with an empty slice.
func ResolveDays(in ResolveInput) []DayAvailability {
	start := models.DateOf(in.RangeStart)
	end := models.DateOf(in.RangeEnd)
	today := models.DateOf(in.Today)

	var lastBookable time.Time
	if in.Settings.MaxAdvanceBookingDays > 0 {
		lastBookable = today.AddDate(0, 0, in.Settings.MaxAdvanceBookingDays)
	}

	var days []DayAvailability
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := DayAvailability{
			Date:      FormatDate(d),
			DayOfWeek: int(d.Weekday()),
			Intervals: []OpenInterval{},
		}
		if dateIsBookable(d, today, lastBookable, in) {
			day.Intervals = windowsOn(d, in.Windows)
		}
		days = append(days, day)
	}
	return days
}

// dateIsBookable applies the whole-day suppression rules
func dateIsBookable(d, today, lastBookable time.Time, in ResolveInput) bool {
	if d.Before(today) {
		return false
	}
	if !in.Settings.AllowSameDayBooking && d.Equal(today) {
		return false
	}
	if !in.Settings.AllowWeekends && (d.Weekday() == time.Sunday || d.Weekday() == time.Saturday) {
		return false
	}
	if !lastBookable.IsZero() && d.After(lastBookable) {
		return false
	}
	for i := range in.Blocked {
		if in.Blocked[i].Covers(d) {
			return false
		}
	}
	return true
}

// windowsOn returns the raw interval of every window published on d
func windowsOn(d time.Time, windows []models.AvailabilityWindow) []OpenInterval {
	intervals := []OpenInterval{}
	for i := range windows {
		w := &windows[i]
		if !w.AppliesOn(d) {
			continue
		}
		intervals = append(intervals, OpenInterval{
			WindowID:  w.ID,
			Title:     w.Title,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}
	sort.SliceStable(intervals, func(i, j int) bool {
		if intervals[i].StartTime != intervals[j].StartTime {
			return intervals[i].StartTime < intervals[j].StartTime
		}
		return intervals[i].Title < intervals[j].Title
	})
	return intervals
}

// IntervalsOn picks the intervals resolved for one date
func IntervalsOn(days []DayAvailability, date time.Time) []OpenInterval {
	key := FormatDate(models.DateOf(date))
	for _, day := range days {
		if day.Date == key {
			return day.Intervals
		}
	}
	return nil
}

// ResolveAvailability resolves a teacher's open intervals for a date range
// as seen at instant now.
func ResolveAvailability(db *gorm.DB, teacherID string, rangeStart, rangeEnd, now time.Time) ([]DayAvailability, error) {
	start := models.DateOf(rangeStart)
	end := models.DateOf(rangeEnd)
	if end.Before(start) {
		return nil, invalid("end", "must not be before start")
	}
	if int(end.Sub(start).Hours()/24) >= MaxResolveRangeDays {
		return nil, invalid("end", "range must not exceed %d days", MaxResolveRangeDays)
	}

	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	in, err := loadResolveInput(db, teacher, start, end, now)
	if err != nil {
		return nil, err
	}
	return ResolveDays(in), nil
}

func loadResolveInput(db *gorm.DB, teacher *models.Teacher, start, end, now time.Time) (ResolveInput, error) {
	windows, err := ListWindows(db, teacher.ID, false)
	if err != nil {
		return ResolveInput{}, err
	}
	blocked, err := ListBlockedRangesBetween(db, teacher.ID, start, end)
	if err != nil {
		return ResolveInput{}, err
	}
	settings, err := GetBookingSettings(db, teacher.ID)
	if err != nil {
		return ResolveInput{}, err
	}
	return ResolveInput{
		RangeStart: start,
		RangeEnd:   end,
		Windows:    windows,
		Blocked:    blocked,
		Settings:   *settings,
		Today:      TodayIn(now, teacher.Location()),
	}, nil
}

// CalendarCell is one square of a month display grid
type CalendarCell struct {
	Date           string         `json:"date"`
	Day            int            `json:"day"`
	IsCurrentMonth bool           `json:"is_current_month"`
	IsToday        bool           `json:"is_today"`
	Intervals      []OpenInterval `json:"intervals"`
}

// MonthGrid is a Sunday-first calendar of whole weeks around one month
type MonthGrid struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Weeks [][]CalendarCell `json:"weeks"`
}

// MonthGridBounds returns the first and last date shown for a month: the
// Sunday on or before the 1st and the Saturday on or after the last day.
func MonthGridBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	return start, end
}

// BuildMonthGrid lays resolved days out as whole weeks. Days of adjacent
// months keep their resolved intervals and are only flagged for display.
func BuildMonthGrid(year int, month time.Month, days []DayAvailability, today time.Time) MonthGrid {
	start, end := MonthGridBounds(year, month)
	byDate := make(map[string][]OpenInterval, len(days))
	for _, day := range days {
		byDate[day.Date] = day.Intervals
	}
	todayKey := FormatDate(models.DateOf(today))

	grid := MonthGrid{Year: year, Month: int(month)}
	var week []CalendarCell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := FormatDate(d)
		intervals := byDate[key]
		if intervals == nil {
			intervals = []OpenInterval{}
		}
		week = append(week, CalendarCell{
			Date:           key,
			Day:            d.Day(),
			IsCurrentMonth: d.Month() == month,
			IsToday:        key == todayKey,
			Intervals:      intervals,
		})
		if len(week) == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = nil
		}
	}
	return grid
}

// ResolveMonth resolves the month grid for a teacher, including padding days
func ResolveMonth(db *gorm.DB, teacherID string, year int, month time.Month, now time.Time) (*MonthGrid, error) {
	if month < time.January || month > time.December {
		return nil, invalid("month", "must be between 1 and 12")
	}
	teacher, err := GetTeacherByID(db, teacherID)
	if err != nil {
		return nil, err
	}
	start, end := MonthGridBounds(year, month)
	in, err := loadResolveInput(db, teacher, start, end, now)
	if err != nil {
		return nil, err
	}
	grid := BuildMonthGrid(year, month, ResolveDays(in), in.Today)
	return &grid, nil
}
