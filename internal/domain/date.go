package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire and storage format for calendar days.
const DateLayout = "2006-01-02"

// MaxStayNights bounds a single reservation.
const MaxStayNights = 90

// Date is a calendar day without a time component. The zero value is "no date".
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current calendar day in loc. A nil loc means UTC.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time { return d.t }
func (d Date) IsZero() bool     { return d.t.IsZero() }

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// Weekday is used by the timeline header.
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// DaysBetween returns b - a in whole days.
func DaysBetween(a, b Date) int {
	return int(math.Round(b.t.Sub(a.t).Hours() / 24))
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalText reads YYYY-MM-DD, for config and fixture files.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return nil, nil
	}
	return []byte(d.String()), nil
}

// Value stores dates as YYYY-MM-DD text so range comparisons work lexically in
// every dialect.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Stay is the half-open night range [CheckIn, CheckOut).
type Stay struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

// Nights returns the number of nights in the stay.
func (s Stay) Nights() int {
	return DaysBetween(s.CheckIn, s.CheckOut)
}

// Validate checks that the stay covers at least one and at most MaxStayNights nights.
func (s Stay) Validate() error {
	if s.CheckIn.IsZero() {
		return ErrInvalidRequest("check_in is required").WithParam("check_in")
	}
	if s.CheckOut.IsZero() {
		return ErrInvalidRequest("check_out is required").WithParam("check_out")
	}
	if !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidRequest("check_out must be after check_in").WithParam("check_out")
	}
	if s.Nights() > MaxStayNights {
		return ErrInvalidRequest(fmt.Sprintf("stays are limited to %d nights", MaxStayNights)).WithParam("check_out")
	}
	return nil
}

// Includes reports whether the night of day belongs to the stay.
func (s Stay) Includes(day Date) bool {
	return !day.Before(s.CheckIn) && day.Before(s.CheckOut)
}

// Days lists every night of the stay.
func (s Stay) Days() []Date {
	n := s.Nights()
	if n <= 0 {
		return nil
	}
	days := make([]Date, n)
	for i := range days {
		days[i] = s.CheckIn.AddDays(i)
	}
	return days
}
