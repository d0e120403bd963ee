package parse

import (
	"fmt"
	"time"
)

// The dispatch store keeps calendar dates and wall-clock times in separate
// columns ("2006-01-02" and "15:04"); these helpers convert between those
// string forms and the minute arithmetic the scheduling core runs on.

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
	monthLayout = "2006-01"
)

// Clock parses an "HH:MM" wall-clock string into minutes since midnight.
func Clock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Date parses a "YYYY-MM-DD" string into a UTC midnight time.
func Date(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// Month parses a "YYYY-MM" string into the first day of that month, UTC.
func Month(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// MonthRange returns the half-open [first day, first day of next month)
// window containing t.
func MonthRange(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, 0)
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MinutesOfDay returns t's wall-clock offset in minutes since midnight.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DaysBetween returns the whole calendar days from a to b (positive when b
// is later), ignoring time-of-day.
func DaysBetween(a, b time.Time) int {
	return int(DayOf(b).Sub(DayOf(a)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
