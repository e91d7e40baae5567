package services

import (
	"fmt"
	"lessonbook_app_go/models"
	"strings"
	"time"
)

const icsTimeFormat = "20060102T150405Z"

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// ReservationICS renders a reservation as an iCalendar event. Times are
// interpreted in the teacher's timezone and written in UTC.
func ReservationICS(teacher *models.Teacher, r *models.ScheduledReservation, now time.Time) ([]byte, error) {
	loc, err := time.LoadLocation(teacher.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid teacher timezone %q: %w", teacher.Timezone, err)
	}
	start := r.StartsAt(loc)
	end, err := time.ParseInLocation("2006-01-02 15:04", FormatDate(r.Date)+" "+r.EndTime, loc)
	if err != nil || start.IsZero() {
		return nil, fmt.Errorf("reservation %s has malformed times", r.ID)
	}

	description := fmt.Sprintf("Lesson with %s for %s.", teacher.Name, r.Customer.Name)
	if r.Notes != "" {
		description += "\n\nNotes: " + r.Notes
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Lessonbook//Reservation//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + r.ID + "@lessonbook",
		"DTSTAMP:" + now.UTC().Format(icsTimeFormat),
		"DTSTART:" + start.UTC().Format(icsTimeFormat),
		"DTEND:" + end.UTC().Format(icsTimeFormat),
		"SUMMARY:" + icsEscaper.Replace("Lesson: "+teacher.Name),
		"DESCRIPTION:" + icsEscaper.Replace(description),
		fmt.Sprintf("ORGANIZER;CN=%q:mailto:%s", teacher.Name, teacher.Email),
		"STATUS:CONFIRMED",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n"), nil
}
