package adherence

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/medlog/internal/constants"
)

// Date is a calendar day with no time of day and no time zone.
// The zero value is not a valid date; use IsZero to detect it.
type Date struct {
	t time.Time // always midnight UTC
}

var dateLayouts = []string{
	constants.DateFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NewDate builds a Date from its parts. Out-of-range parts are normalized the
// same way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Normalize strips the time of day from t. The calendar day is read in t's own
// location, so 23:30 in New York stays on the same day it was written.
func Normalize(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate reads a calendar day from either a plain YYYY-MM-DD value or a
// timestamp that carries a time component. Any time component is discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", ErrInvalidDate, s)
}

// MustParseDate is like ParseDate but panics on malformed input. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Today returns the current calendar day in loc. A nil loc means time.Local.
// Nothing inside this package calls Today; callers pass the result in.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Normalize(time.Now().In(loc))
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Year returns the calendar year of d.
func (d Date) Year() int {
	return d.t.Year()
}

func (d Date) Month() time.Month {
	return d.t.Month()
}

func (d Date) Day() int {
	return d.t.Day()
}

func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// SameDay reports whether d and o are the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.t.Equal(o.t)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return d.t.After(o.t)
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysBetween returns the number of days from a to b. It is negative when b is before a.
func DaysBetween(a, b Date) int {
	return int(b.dayNumber() - a.dayNumber())
}

// dayNumber counts days since the Unix epoch. Dates are UTC midnights, so the
// division is exact for any year.
func (d Date) dayNumber() int64 {
	return floorDiv(d.t.Unix(), 86400)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Time returns midnight of d in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(constants.DateFormat)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Window is an inclusive range of calendar days. A window whose Start is after
// its End contains no days.
type Window struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// TrailingWindow returns the window of the given number of days ending at ref.
// days <= 0 yields an empty window.
func TrailingWindow(ref Date, days int) Window {
	if days <= 0 {
		return Window{Start: ref.AddDays(1), End: ref}
	}
	return Window{Start: ref.AddDays(-(days - 1)), End: ref}
}

// MonthWindow returns the window covering every day of the given month.
func MonthWindow(year int, month time.Month) Window {
	start := NewDate(year, month, 1)
	return Window{Start: start, End: NewDate(year, month+1, 0)}
}

// Empty reports whether the window contains no days.
func (w Window) Empty() bool {
	return w.Start.IsZero() || w.End.IsZero() || w.Start.After(w.End)
}

// Len returns the number of days in the window.
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return DaysBetween(w.Start, w.End) + 1
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	return !w.Empty() && !d.Before(w.Start) && !d.After(w.End)
}

// Days returns every date in the window in ascending order.
func (w Window) Days() []Date {
	n := w.Len()
	days := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, w.Start.AddDays(i))
	}
	return days
}
