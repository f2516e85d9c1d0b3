package model

import "time"

// Date layouts. DateLayout is canonical; LegacyDateLayout shows up in rows
// typed in by hand with other tools.
const (
	DateLayout       = "2006-01-02"
	LegacyDateLayout = "01/02/2006"
)

// Date returns the calendar date y-m-d at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the time of day and location from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Today returns the current local calendar date.
func Today() time.Time {
	return DateOf(time.Now())
}

// FormatDate formats d as yyyy-MM-dd. The zero time formats as "".
func FormatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// ParseDate parses a yyyy-MM-dd date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
