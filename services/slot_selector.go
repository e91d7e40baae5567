package services

import (
	"lessonbook_app_go/models"
	"time"

	"github.com/shopspring/decimal"
)

// SlotGridMinutes is the step of the custom-time picker
const SlotGridMinutes = 30

// SelectedSlot is a visitor's choice inside one window occurrence
type SelectedSlot struct {
	WindowID  string          `json:"window_id"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Hours     decimal.Decimal `json:"hours"`
}

// Key identifies the window occurrence a selection belongs to
func (s SelectedSlot) Key() string {
	return s.WindowID + "@" + s.Date
}

// TimeChoices are the picker options for a window
type TimeChoices struct {
	StartTimes []string `json:"start_times"`
	EndTimes   []string `json:"end_times"`
}

// TimeOptions enumerates the half-hour grid of a window. Starts run from
// the window start up to but excluding its end; ends run from one step
// after the start and always include the window end, on grid or not.
func TimeOptions(window *models.AvailabilityWindow) (TimeChoices, error) {
	start, end, err := windowBounds(window)
	if err != nil {
		return TimeChoices{}, err
	}

	choices := TimeChoices{StartTimes: []string{}, EndTimes: []string{}}
	for t := start; t < end; t += SlotGridMinutes {
		choices.StartTimes = append(choices.StartTimes, t.String())
		if t > start {
			choices.EndTimes = append(choices.EndTimes, t.String())
		}
	}
	choices.EndTimes = append(choices.EndTimes, end.String())
	return choices, nil
}

func windowBounds(window *models.AvailabilityWindow) (TimeOfDay, TimeOfDay, error) {
	start, err := ParseTimeOfDay(window.StartTime)
	if err != nil {
		return 0, 0, invalid("start_time", "%v", err)
	}
	end, err := ParseTimeOfDay(window.EndTime)
	if err != nil {
		return 0, 0, invalid("end_time", "%v", err)
	}
	if end <= start {
		return 0, 0, invalid("end_time", "window ends before it starts")
	}
	return start, end, nil
}

// SelectCustomTime narrows a window to [desiredStart, desiredEnd) on date.
// Empty times fall back to the window bounds.
func SelectCustomTime(window *models.AvailabilityWindow, date time.Time, desiredStart, desiredEnd string) (*SelectedSlot, error) {
	wStart, wEnd, err := windowBounds(window)
	if err != nil {
		return nil, err
	}

	start, end := wStart, wEnd
	if desiredStart != "" {
		if start, err = ParseTimeOfDay(desiredStart); err != nil {
			return nil, invalid("start_time", "%v", err)
		}
	}
	if desiredEnd != "" {
		if end, err = ParseTimeOfDay(desiredEnd); err != nil {
			return nil, invalid("end_time", "%v", err)
		}
	}

	if start >= end {
		return nil, invalid("end_time", "must be after start time")
	}
	if start < wStart || end > wEnd {
		return nil, invalid("start_time", "%s-%s is outside the window %s-%s", start, end, window.StartTime, window.EndTime)
	}
	if (start-wStart)%SlotGridMinutes != 0 {
		return nil, invalid("start_time", "must fall on the %d-minute grid from %s", SlotGridMinutes, window.StartTime)
	}
	if end != wEnd && (end-wStart)%SlotGridMinutes != 0 {
		return nil, invalid("end_time", "must fall on the %d-minute grid from %s or equal %s", SlotGridMinutes, window.StartTime, window.EndTime)
	}

	return &SelectedSlot{
		WindowID:  window.ID,
		Date:      FormatDate(models.DateOf(date)),
		StartTime: start.String(),
		EndTime:   end.String(),
		Hours:     HoursBetween(start, end),
	}, nil
}

// Cart accumulates pending selections before checkout. It holds at most one
// selection per window occurrence and never looks at stored reservations.
type Cart struct {
	entries []SelectedSlot
}

// Select adds a selection, replacing any earlier one for the same occurrence
// in place.
func (c *Cart) Select(slot SelectedSlot) {
	for i := range c.entries {
		if c.entries[i].Key() == slot.Key() {
			c.entries[i] = slot
			return
		}
	}
	c.entries = append(c.entries, slot)
}

// Remove drops the selection with the given key
func (c *Cart) Remove(key string) bool {
	for i := range c.entries {
		if c.entries[i].Key() == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns the selections in the order they were first added
func (c *Cart) Entries() []SelectedSlot {
	out := make([]SelectedSlot, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of pending selections
func (c *Cart) Len() int {
	return len(c.entries)
}

// TotalHours sums the hours of every pending selection
func (c *Cart) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Hours)
	}
	return total
}
