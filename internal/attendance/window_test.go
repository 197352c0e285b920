package attendance

import (
	"testing"
	"time"

	"github.com/cruzverde/attendance/internal/apperr"
)

func TestMonthWindow_Boundaries(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	w, err := MonthWindow(2025, time.March, loc)
	if err != nil {
		t.Fatalf("MonthWindow: %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"last second of february", time.Date(2025, 2, 28, 23, 59, 59, 0, loc), false},
		{"first instant of march", time.Date(2025, 3, 1, 0, 0, 0, 0, loc), true},
		{"mid march", time.Date(2025, 3, 15, 12, 0, 0, 0, loc), true},
		{"last second of march", time.Date(2025, 3, 31, 23, 59, 59, 0, loc), true},
		{"first instant of april", time.Date(2025, 4, 1, 0, 0, 0, 0, loc), false},
		{"march utc but february local", time.Date(2025, 3, 1, 4, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := w.Contains(tt.at); got != tt.want {
			t.Errorf("%s: Contains(%s) = %v, want %v", tt.name, tt.at, got, tt.want)
		}
	}
}

func TestMonthWindow_December(t *testing.T) {
	w, err := MonthWindow(2024, time.December, time.UTC)
	if err != nil {
		t.Fatalf("MonthWindow: %v", err)
	}
	if !w.To.Before(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("To = %s spills into January", w.To)
	}
	if w.To.Day() != 31 || w.To.Hour() != 23 || w.To.Minute() != 59 || w.To.Second() != 59 {
		t.Fatalf("To = %s", w.To)
	}
}

func TestMonthWindow_Invalid(t *testing.T) {
	for _, m := range []time.Month{0, 13} {
		if _, err := MonthWindow(2025, m, time.UTC); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("month %d: err = %v", m, err)
		}
	}
	if _, err := MonthWindow(10, time.March, time.UTC); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("year 10: err = %v", err)
	}
}

func TestDayWindow(t *testing.T) {
	loc := time.UTC
	from := time.Date(2025, 3, 3, 15, 0, 0, 0, loc)
	to := time.Date(2025, 3, 5, 1, 0, 0, 0, loc)
	w, err := DayWindow(from, to, loc)
	if err != nil {
		t.Fatalf("DayWindow: %v", err)
	}
	if !w.Contains(time.Date(2025, 3, 3, 0, 0, 0, 0, loc)) {
		t.Error("start of first day excluded")
	}
	if !w.Contains(time.Date(2025, 3, 5, 23, 59, 59, 0, loc)) {
		t.Error("end of last day excluded")
	}
	if w.Contains(time.Date(2025, 3, 6, 0, 0, 0, 0, loc)) {
		t.Error("next day included")
	}

	if _, err := DayWindow(to, from, loc); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("reversed range err = %v", err)
	}

	open, err := DayWindow(time.Time{}, to, loc)
	if err != nil || !open.From.IsZero() {
		t.Fatalf("open start: %+v, %v", open, err)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	// 03:00 UTC on the 2nd is still the 1st in UTC-5.
	got := StartOfDay(time.Date(2025, 3, 2, 3, 0, 0, 0, time.UTC), loc)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("StartOfDay = %s, want %s", got, want)
	}
}
