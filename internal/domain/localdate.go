package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormatYYYYMMDD is the pattern used for persisted document keys.
const DateFormatYYYYMMDD = "YYYY-MM-DD"

// LocalDate is a calendar date without time of day or zone.
// The zero value is not a valid date; use Today, NewLocalDate or LocalDateOf.
type LocalDate struct {
	year  int
	month time.Month
	day   int
}

// NewLocalDate returns the given date, normalizing out-of-range values the
// way time.Date does (e.g. April 31 becomes May 1).
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// LocalDateOf returns the calendar date of t in t's own location.
func LocalDateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{year: y, month: m, day: d}
}

// Today returns the current date in the process local time zone.
func Today() LocalDate {
	return LocalDateOf(clock.Now().In(time.Local))
}

// ParseLocalDate parses "2006-01-02" as well as the unpadded "2006-1-2" key form.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-1-2", strings.TrimSpace(s))
	if err != nil {
		return LocalDate{}, fmt.Errorf("parse local date %q: %w", s, err)
	}
	return LocalDateOf(t), nil
}

func (d LocalDate) Year() int         { return d.year }
func (d LocalDate) Month() time.Month { return d.month }
func (d LocalDate) Day() int          { return d.day }

// IsZero reports whether d is the zero value.
func (d LocalDate) IsZero() bool { return d == LocalDate{} }

// AddDays returns the date n calendar days after d. Negative n moves backwards.
func (d LocalDate) AddDays(n int) LocalDate {
	return NewLocalDate(d.year, d.month, d.day+n)
}

// Time returns midnight UTC of d.
func (d LocalDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d LocalDate) Compare(o LocalDate) int {
	return d.Time().Compare(o.Time())
}

// Format renders d by substituting YYYY, MM and DD with the unpadded year,
// month and day. Only the first occurrence of each token is replaced.
func (d LocalDate) Format(pattern string) string {
	s := strings.Replace(pattern, "YYYY", strconv.Itoa(d.year), 1)
	s = strings.Replace(s, "MM", strconv.Itoa(int(d.month)), 1)
	return strings.Replace(s, "DD", strconv.Itoa(d.day), 1)
}

// ISO renders d as zero-padded "2006-01-02", which sorts lexically.
func (d LocalDate) ISO() string {
	return d.Time().Format(time.DateOnly)
}

func (d LocalDate) String() string {
	return d.Format(DateFormatYYYYMMDD)
}

// MarshalText renders the persisted key form.
func (d LocalDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts both the key form and ISO dates.
func (d *LocalDate) UnmarshalText(b []byte) error {
	parsed, err := ParseLocalDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
