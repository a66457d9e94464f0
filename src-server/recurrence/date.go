package recurrence

import (
	"fmt"
	"time"
)

// Date is a calendar date with no time of day and no zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the wall-clock date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("ParseDate: %w", err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// midnight UTC, used only for date arithmetic
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }

func (d Date) AddDays(n int) Date { return DateOf(d.utc().AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return d.utc().Before(o.utc()) }

func (d Date) After(o Date) bool { return d.utc().After(o.utc()) }

// DaysSince counts calendar days from o to d. Computed on UTC midnights, so
// DST transitions never produce 23 or 25 hour days here.
func (d Date) DaysSince(o Date) int {
	return int(d.utc().Sub(o.utc()).Hours() / 24)
}

// MonthsSince counts calendar months from o to d, ignoring the day.
func (d Date) MonthsSince(o Date) int {
	return (d.Year*12 + int(d.Month)) - (o.Year*12 + int(o.Month))
}

// Next returns the first date on or after d that falls on one of days.
func (d Date) Next(days []time.Weekday) (Date, bool) {
	if len(days) == 0 {
		return Date{}, false
	}
	for i := range 7 {
		c := d.AddDays(i)
		for _, wd := range days {
			if c.Weekday() == wd {
				return c, true
			}
		}
	}
	return Date{}, false
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a local wall-clock time.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func ClockOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (c TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// At combines a local date and wall-clock time in loc and returns the UTC
// instant. The offset is the one in force on that date. A wall-clock time
// that falls inside a spring-forward gap does not exist and is moved forward
// by the size of the gap (02:30 becomes 03:30).
func At(d Date, c TimeOfDay, loc *time.Location) time.Time {
	t := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, 0, loc)
	if t.Hour() != c.Hour || t.Minute() != c.Minute {
		want := c.Hour*60 + c.Minute
		got := t.Hour()*60 + t.Minute()
		if DateOf(t) == d && got < want {
			t = t.Add(time.Duration(want-got) * time.Minute)
		}
	}
	return t.UTC()
}
