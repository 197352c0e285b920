package attendance

import (
	"time"

	"github.com/cruzverde/attendance/internal/apperr"
)

// Window is an inclusive check-in range. A zero bound is open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// MonthWindow covers the first to the last instant of month in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) (Window, error) {
	if month < time.January || month > time.December {
		return Window{}, apperr.Validation("month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return Window{}, apperr.Validation("year is out of range")
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Window{From: start, To: end}, nil
}

// DayWindow covers the local days from..to inclusive.
func DayWindow(from, to time.Time, loc *time.Location) (Window, error) {
	var w Window
	if !from.IsZero() {
		w.From = StartOfDay(from, loc)
	}
	if !to.IsZero() {
		w.To = StartOfDay(to, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !w.From.IsZero() && !w.To.IsZero() && w.To.Before(w.From) {
		return Window{}, apperr.Validation("end date precedes start date")
	}
	return w, nil
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
