// Package planner holds the recurrence logic of the workout planner: date
// normalization, occurrence checks, week expansion and the per-date mutations
// applied to a workout definition. Everything here is pure and safe for
// concurrent use.
package planner

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the wire form of a Date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when an input cannot be read as a date.
var ErrInvalidDate = errors.New("invalid date")

// maxEpochMillis bounds numeric input to ±100,000,000 days around the epoch,
// the range a JavaScript Date can represent.
const maxEpochMillis = 8.64e15

// Date is a UTC calendar day. Two Dates are equal iff year, month and day match,
// so Date works as a map key and with ==.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// dateLayouts are tried in order for string input. Layouts without a zone are
// read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// FromTime returns the UTC calendar day of t.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// Normalize converts date-like input to a Date. It accepts time.Time,
// *time.Time, Date, strings in the layouts above and numbers, which are read as
// Unix epoch milliseconds. Time of day and zone offsets are dropped after the
// instant is converted to UTC.
func Normalize(raw any) (Date, error) {
	switch v := raw.(type) {
	case Date:
		if v.IsZero() {
			return Date{}, ErrInvalidDate
		}
		return v, nil
	case time.Time:
		if v.IsZero() {
			return Date{}, ErrInvalidDate
		}
		return FromTime(v), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return Date{}, ErrInvalidDate
		}
		return FromTime(*v), nil
	case string:
		return parseString(v)
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return fromMillis(float64(ms))
		}
		f, err := v.Float64()
		if err != nil {
			return Date{}, ErrInvalidDate
		}
		return fromMillis(f)
	case int:
		return fromMillis(float64(v))
	case int64:
		return fromMillis(float64(v))
	case float64:
		return fromMillis(v)
	}
	return Date{}, ErrInvalidDate
}

// MustDate builds a Date from its parts. The parts are normalized the way
// time.Date does, so MustDate(2025, 1, 32) is February 1st.
func MustDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func parseString(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

func fromMillis(ms float64) (Date, error) {
	if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
		return Date{}, ErrInvalidDate
	}
	return FromTime(time.UnixMilli(int64(ms))), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns UTC midnight of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the canonical weekday name of d.
func (d Date) Weekday() string {
	return WeekdayName(d.Time().Weekday())
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Normalize(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
