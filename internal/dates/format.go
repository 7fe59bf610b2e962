package dates

import (
	"fmt"
	"time"
)

const (
	layoutShort  = "Jan 2, 2006"
	layoutMedium = "Jan 2, 2006, 3:04 PM"
	layoutLong   = "Monday, January 2, 2006 at 3:04:05 PM"
	layoutInput  = "2006-01-02"
	never        = "Never"
)

// FormatShort renders "Jan 15, 2024".
func FormatShort(t time.Time) string {
	if t.IsZero() {
		return never
	}
	return t.Format(layoutShort)
}

// FormatMedium renders "Jan 15, 2024, 2:30 PM".
func FormatMedium(t time.Time) string {
	if t.IsZero() {
		return never
	}
	return t.Format(layoutMedium)
}

// FormatLong renders "Monday, January 15, 2024 at 2:30:45 PM".
func FormatLong(t time.Time) string {
	if t.IsZero() {
		return never
	}
	return t.Format(layoutLong)
}

// FormatForInput renders the date part for form fields, "2024-01-15".
func FormatForInput(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(layoutInput)
}

// Relative describes t relative to the current time.
func Relative(t time.Time) string {
	return RelativeAt(t, now())
}

// RelativeAt describes t relative to ref. Calendar comparisons use ref's
// location.
func RelativeAt(t, ref time.Time) string {
	if t.IsZero() {
		return never
	}
	local := t.In(ref.Location())
	if sameDay(local, ref) {
		return "Today"
	}
	if sameDay(local, ref.AddDate(0, 0, -1)) {
		return "Yesterday"
	}

	diff := ref.Sub(t)
	if diff < 0 {
		return "In the future"
	}
	days := int(diff / (24 * time.Hour))
	weeks := days / 7
	months := days / 30
	switch {
	case days < 7:
		return plural(days, "day")
	case weeks < 4:
		return plural(weeks, "week")
	case months < 12:
		return plural(months, "month")
	default:
		return plural(months/12, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// IsToday reports whether t falls on the current calendar day.
func IsToday(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	ref := now()
	return sameDay(t.In(ref.Location()), ref)
}

// IsWithinLastDays reports whether t lies in [now-days, now].
func IsWithinLastDays(t time.Time, days int) bool {
	return IsWithinLastDaysAt(t, days, now())
}

// IsWithinLastDaysAt is IsWithinLastDays against a fixed reference time.
func IsWithinLastDaysAt(t time.Time, days int, ref time.Time) bool {
	if t.IsZero() || days < 0 {
		return false
	}
	from := ref.Add(-time.Duration(days) * 24 * time.Hour)
	return !t.Before(from) && !t.After(ref)
}

// StartOfWeek returns midnight of the Sunday on or before t, in t's location.
func StartOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// DaysBetween counts whole days from a to b; negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
