// Package recurrence describes repeating events and expands them into
// concrete occurrences.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"schedly/src-server/timezone"
)

type Frequency string

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

func ParseFrequency(s string) (Frequency, error) {
	switch f := Frequency(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return Weekly, nil
	case Daily, Weekly, Monthly:
		return f, nil
	default:
		return "", &ValidationError{Field: "freq", Reason: fmt.Sprintf("unsupported frequency %q", s)}
	}
}

var ErrInvalidDescriptor = errors.New("invalid recurrence")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDescriptor
}

// Descriptor is the rule for a series. Start and End describe the first
// (anchor) instance; their wall-clock time in Timezone is kept for every
// generated occurrence. A Descriptor is never mutated once a series exists:
// per-instance changes are exceptions.
type Descriptor struct {
	Title       string
	Description string
	Location    string

	Start    time.Time
	End      time.Time
	Timezone string

	Frequency Frequency
	// Interval is the step between periods, 0 is read as 1.
	Interval int
	// Weekdays only apply to Weekly. Empty means the anchor's weekday.
	Weekdays []time.Weekday
	// Until is inclusive. Zero means open-ended, bounded only by Limits.
	Until Date
}

// resolved is a Descriptor after validation, with everything the
// materializer needs precomputed.
type resolved struct {
	loc      *time.Location
	fellBack bool
	anchor   Date
	clock    TimeOfDay
	duration time.Duration
	freq     Frequency
	interval int
	days     [7]bool
	until    Date
}

func (d Descriptor) resolve() (resolved, error) {
	var r resolved
	if d.Start.IsZero() || d.End.IsZero() {
		return r, &ValidationError{Field: "start", Reason: "start and end are required"}
	}
	if !d.End.After(d.Start) {
		return r, &ValidationError{Field: "end", Reason: "end must be after start"}
	}
	loc, fellBack, err := d.location()
	if err != nil {
		return r, &ValidationError{Field: "timezone", Reason: err.Error()}
	}
	freq, err := ParseFrequency(string(d.Frequency))
	if err != nil {
		return r, err
	}
	if d.Interval < 0 {
		return r, &ValidationError{Field: "interval", Reason: "interval must be positive"}
	}

	local := d.Start.In(loc)
	r = resolved{
		loc:      loc,
		fellBack: fellBack,
		anchor:   DateOf(local),
		clock:    ClockOf(local),
		duration: d.End.Sub(d.Start),
		freq:     freq,
		interval: max(d.Interval, 1),
		until:    d.Until,
	}
	for _, wd := range d.Weekdays {
		if _, err := WeekdayFromIndex(int(wd)); err != nil {
			return resolved{}, err
		}
		r.days[wd] = true
	}
	if len(d.Weekdays) == 0 {
		r.days[r.anchor.Weekday()] = true
	}
	return r, nil
}

// location prefers the explicit Timezone, then the zone carried by Start.
func (d Descriptor) location() (*time.Location, bool, error) {
	if strings.TrimSpace(d.Timezone) == "" {
		if d.Start.Location() != nil {
			return d.Start.Location(), false, nil
		}
		return time.UTC, false, nil
	}
	return timezone.Resolve(d.Timezone)
}

// Validate reports the same errors Materialize would.
func (d Descriptor) Validate() error {
	_, err := d.resolve()
	return err
}

// Days returns the effective weekday set, which for a rule without explicit
// weekdays is the anchor's weekday.
func (d Descriptor) Days() []time.Weekday {
	if len(d.Weekdays) > 0 {
		return NormalizeWeekdays(d.Weekdays)
	}
	loc, _, err := d.location()
	if err != nil {
		loc = time.UTC
	}
	return []time.Weekday{d.Start.In(loc).Weekday()}
}

func (d Descriptor) Duration() time.Duration { return d.End.Sub(d.Start) }
