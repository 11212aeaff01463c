package util

import (
	"time"

	"github.com/pkg/errors"
)

// ISODateLayout is the only date format accepted from operators and stored in the database.
const ISODateLayout = "2006-01-02"

var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// Clock returns the current time. Workflows take one so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock in local time.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// ParseISODate parses a strict YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	if len(s) != len(ISODateLayout) {
		return time.Time{}, errors.Wrapf(ErrInvalidDateFormat, "%q", s)
	}
	t, err := time.ParseInLocation(ISODateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDateFormat, "%q", s)
	}
	return t, nil
}

// FormatISODate renders t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(ISODateLayout)
}

// Today is the clock's current day at midnight.
func Today(clock Clock) time.Time {
	if clock == nil {
		clock = SystemClock
	}
	return TruncateDay(clock())
}

// TruncateDay drops the time of day, keeping the location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves d by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DayCounter returns the number of days from b to a, positive when a is later.
type DayCounter func(a, b time.Time) int

// DaysBetween is the historical day count: every year counts 365 days and the
// day of year is added, so it drifts by one per leap day crossed.
func DaysBetween(a, b time.Time) int {
	return (365*a.Year() + a.YearDay()) - (365*b.Year() + b.YearDay())
}

// CalendarDaysBetween counts real calendar days from b to a.
func CalendarDaysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ua.Sub(ub).Hours() / 24)
}

// DayCounterFor maps the day_count option to its counter, calendar by default.
func DayCounterFor(name string) DayCounter {
	if name == "legacy" {
		return DaysBetween
	}
	return CalendarDaysBetween
}
