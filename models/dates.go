package models

import "time"

// DateLayout is the wire and storage format for calendar dates
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date in t's own location and returns
// that date as UTC midnight, the canonical form stored in date columns.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
