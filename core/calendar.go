package core

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTimeFormat = errors.New("invalid time, expected HH:MM")
	ErrInvalidRange      = errors.New("start date must not be after end date")
)

const calendarDateLayout = "2006-01-02"

// CalendarDate is a date with no time-of-day component. Two dates are equal
// when they name the same calendar day; they are never compared as instants.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		return CalendarDate{}, ErrInvalidDateFormat
	}
	return CalendarDateOf(t, time.UTC), nil
}

// CalendarDateOf returns the calendar day `t` falls on in `loc`.
func CalendarDateOf(t time.Time, loc *time.Location) CalendarDate {
	y, m, d := t.In(loc).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

func Today(now time.Time) CalendarDate {
	return CalendarDateOf(now, now.Location())
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Midnight returns the day's start instant in `loc`.
func (d CalendarDate) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At combines the date with a wall-clock time in `loc`.
func (d CalendarDate) At(ct ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, ct.Hour, ct.Minute, 0, 0, loc)
}

func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDateOf(d.Midnight(time.UTC).AddDate(0, 0, n), time.UTC)
}

func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDate) After(other CalendarDate) bool {
	return other.Before(d)
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDateFormat
	}
	// tolerate serialized instants by discarding any time-of-day component
	parsed, err := ParseCalendarDate(s[1 : len(s)-1])
	if err != nil {
		if t, tErr := time.Parse(time.RFC3339, s[1:len(s)-1]); tErr == nil {
			*d = CalendarDateOf(t, t.Location())
			return nil
		}
		return err
	}
	*d = parsed
	return nil
}

func (d CalendarDate) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *CalendarDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		// DATE columns come back as midnight UTC; read the components as-is
		*d = CalendarDateOf(v, v.Location())
		return nil
	case []byte:
		parsed, err := ParseCalendarDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseCalendarDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	return errors.Errorf("cannot scan %T into CalendarDate", src)
}

// ClockTime is a wall-clock time of day, 24-hour, minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, ErrInvalidTimeFormat
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return ClockTime{}, ErrInvalidTimeFormat
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return ClockTime{}, ErrInvalidTimeFormat
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// MinuteOfDay supports ordering within a single day.
func (ct ClockTime) MinuteOfDay() int {
	return ct.Hour*60 + ct.Minute
}

func (ct ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ct.String() + `"`), nil
}

func (ct *ClockTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidTimeFormat
	}
	parsed, err := ParseClockTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*ct = parsed
	return nil
}

func (ct ClockTime) Value() (driver.Value, error) {
	return ct.String(), nil
}

func (ct *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseClockTime(string(v))
		if err != nil {
			return err
		}
		*ct = parsed
		return nil
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*ct = parsed
		return nil
	}
	return errors.Errorf("cannot scan %T into ClockTime", src)
}

// DateRange is an inclusive pair of calendar days.
type DateRange struct {
	Start CalendarDate
	End   CalendarDate
}

// NewDateRange parses and validates inclusive day bounds.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := ParseCalendarDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseCalendarDate(end)
	if err != nil {
		return DateRange{}, err
	}
	if s.After(e) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: s, End: e}, nil
}

func (r DateRange) Contains(d CalendarDate) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ContainsInstant reports whether `t` falls on a day within the range,
// evaluated in `loc`.
func (r DateRange) ContainsInstant(t time.Time, loc *time.Location) bool {
	return r.Contains(CalendarDateOf(t, loc))
}

// Bounds returns the half-open instant interval [start 00:00, end+1day 00:00)
// in `loc`, for storage engines that filter on instants.
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time) {
	return r.Start.Midnight(loc), r.End.AddDays(1).Midnight(loc)
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
