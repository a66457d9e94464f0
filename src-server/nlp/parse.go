// Package nlp turns free text ("CS 101 lecture Mon/Wed/Fri 9:30-10:20 until
// Dec 10 @ Hall B") into structured event fields. It is deterministic: the
// same text, zone hint and reference time always give the same Fields.
package nlp

import (
	"strings"
	"sync"
	"time"

	"schedly/src-server/recurrence"
	"schedly/src-server/timezone"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"
)

// Fields is everything Parse could recover. Missing pieces are filled with
// defaults and flagged through HasDate/HasTime instead of failing.
type Fields struct {
	Title       string
	Description string
	Location    string

	// Start and End are UTC.
	Start   time.Time
	End     time.Time
	HasDate bool
	HasTime bool

	// Timezone is the resolved zone name. TimezoneFallback reports that the
	// hint could not be resolved and UTC was used.
	Timezone         string
	TimezoneFallback bool

	Recurring        bool
	Frequency        recurrence.Frequency
	RepeatDays       []time.Weekday
	RepeatUntil      *recurrence.Date
	RepeatEveryWeeks int
}

func (f Fields) IsRecurring() bool { return f.Recurring }

// Descriptor converts recurring fields into a series rule.
func (f Fields) Descriptor() recurrence.Descriptor {
	d := recurrence.Descriptor{
		Title:       f.Title,
		Description: f.Description,
		Location:    f.Location,
		Start:       f.Start,
		End:         f.End,
		Timezone:    f.Timezone,
		Frequency:   f.Frequency,
		Interval:    f.RepeatEveryWeeks,
	}
	if f.Frequency == recurrence.Weekly {
		d.Weekdays = f.RepeatDays
	}
	if f.RepeatUntil != nil {
		d.Until = *f.RepeatUntil
	}
	return d
}

var (
	DefaultStart    = recurrence.TimeOfDay{Hour: 9}
	DefaultDuration = time.Hour
)

// Parser holds the read-only loose-date grammar. It is safe for concurrent
// use.
type Parser struct {
	when *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	// explicit dates, relative words and times have their own extractors;
	// when only backs up phrasings those miss ("in 3 days", "3rd of march")
	w.Add(en.Deadline(rules.Override), en.ExactMonthDate(rules.Override))
	return &Parser{when: w}
}

var defaultParser = sync.OnceValue(New)

// Parse runs the package's default Parser.
func Parse(text, timezoneHint string, now time.Time) Fields {
	return defaultParser().Parse(text, timezoneHint, now)
}

func (p *Parser) Parse(text, timezoneHint string, now time.Time) Fields {
	f := Fields{Frequency: recurrence.Weekly, RepeatEveryWeeks: 1}
	text = normalize(text)

	// zone first: every relative and local time depends on it
	loc, fellBack, err := timezone.Resolve(timezoneHint)
	if err != nil {
		loc, fellBack = time.UTC, true
	}
	if m := ExtractTimezone(text); m.Matched {
		loc, fellBack, text = m.Value, false, m.Residual
	}
	f.Timezone, f.TimezoneFallback = loc.String(), fellBack
	today := recurrence.DateOf(now.In(loc))

	text = substituteRelative(text, today)

	if m := ExtractDescription(text); m.Matched {
		f.Description, text = m.Value, m.Residual
	}
	if m := ExtractLocation(text); m.Matched {
		f.Location, text = m.Value, m.Residual
	}

	var (
		dateRange *DateRange
		date      *recurrence.Date
	)
	if m := ExtractDateRange(text, today); m.Matched {
		dateRange, text = &m.Value, m.Residual
	}
	if m := ExtractUntil(text, today); m.Matched {
		f.RepeatUntil, text = &m.Value, m.Residual
	}
	if dateRange == nil {
		if m := ExtractDate(text, today); m.Matched {
			date, text = &m.Value, m.Residual
		}
	}

	var slot TimeSlot
	if m := ExtractTimeRange(text); m.Matched {
		slot, text, f.HasTime = m.Value, m.Residual, true
	} else if m := ExtractTime(text); m.Matched {
		slot, text, f.HasTime = m.Value, m.Residual, true
		if d := ExtractDuration(text); d.Matched {
			slot.Duration, text = d.Value, d.Residual
		}
	}

	if dateRange == nil && date == nil {
		if d, rest, ok := p.looseDate(text, now.In(loc), today); ok {
			date, text = &d, rest
		}
	}

	var days []time.Weekday
	if m := ExtractWeekdays(text); m.Matched {
		days, text = m.Value.Days, m.Residual
		f.Recurring = m.Value.Recurring
	}
	cadence := Cadence{}
	if m := ExtractCadence(text); m.Matched {
		cadence, text = m.Value, m.Residual
		f.Recurring = true
	}
	if cadence.Monthly {
		f.Frequency = recurrence.Monthly
	}
	if cadence.EveryWeeks > 0 {
		f.RepeatEveryWeeks = cadence.EveryWeeks
	}

	if dateRange != nil {
		f.Recurring = true
		f.RepeatUntil = &dateRange.End
		if len(days) == 0 {
			days = allDays
		}
	}
	if f.RepeatUntil != nil {
		f.Recurring = true
	}

	anchor := today
	switch {
	case dateRange != nil:
		anchor, f.HasDate = dateRange.Start, true
	case date != nil:
		anchor, f.HasDate = *date, true
	case len(days) > 0:
		anchor, _ = today.Next(days)
		f.HasDate = true
	}
	// a weekly rule starts on its first selected day, not on the "from" date
	if f.Recurring && f.Frequency == recurrence.Weekly && len(days) > 0 {
		if next, ok := anchor.Next(days); ok {
			anchor = next
		}
	}
	if cadence.ForWeeks > 0 && f.RepeatUntil == nil {
		until := anchor.AddDays(7*cadence.ForWeeks - 1)
		f.RepeatUntil = &until
	}
	switch {
	case f.Frequency == recurrence.Monthly:
		f.RepeatDays = nil
	case len(days) > 0:
		f.RepeatDays = recurrence.NormalizeWeekdays(days)
	case f.Recurring:
		f.RepeatDays = []time.Weekday{anchor.Weekday()}
	}

	start := DefaultStart
	if f.HasTime {
		start = slot.Start
	}
	f.Start = recurrence.At(anchor, start, loc)
	switch {
	case slot.HasEnd:
		f.End = recurrence.At(anchor, slot.End, loc)
	case slot.Duration > 0:
		f.End = f.Start.Add(slot.Duration)
	default:
		f.End = f.Start.Add(DefaultDuration)
	}
	if !f.End.After(f.Start) {
		f.End = f.Start.Add(DefaultDuration)
	}

	f.Title = cleanTitle(text)
	return f
}

// looseDate asks when for a date the regular extractors did not recognize.
// Only the calendar date of the result is used; a phrase that only moves
// the clock ("in 2 hours") is ignored.
func (p *Parser) looseDate(text string, base time.Time, today recurrence.Date) (recurrence.Date, string, bool) {
	r, err := p.when.Parse(text, base)
	if err != nil || r == nil {
		return recurrence.Date{}, text, false
	}
	lower := strings.ToLower(r.Text)
	if strings.Contains(lower, "hour") || strings.Contains(lower, "minute") || strings.Contains(lower, "second") {
		return recurrence.Date{}, text, false
	}
	// ExtractDate already refused any calendar date left in the text, so
	// when would only be rolling an impossible one ("Feb 30") forward
	if singleDate.MatchString(r.Text) {
		return recurrence.Date{}, text, false
	}
	d := recurrence.DateOf(r.Time.In(base.Location()))
	if d.Before(today) {
		d = recurrence.NewDate(d.Year+1, d.Month, d.Day)
	}
	// Text may or may not carry the separator the rule matched before it
	phrase := strings.ToLower(strings.TrimSpace(r.Text))
	from := max(0, min(r.Index, len(text)))
	i := strings.Index(strings.ToLower(text[from:]), phrase)
	if phrase == "" || i < 0 {
		return d, text, true
	}
	return d, cut(text, from+i, from+i+len(phrase)), true
}
