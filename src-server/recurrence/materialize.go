package recurrence

import (
	"time"
)

// Occurrence is one concrete instance of a series. OriginalStart is the
// slot the rule generated and never changes, even when an override moves
// Start; it is the key exceptions are stored under.
type Occurrence struct {
	SeriesID      string
	OriginalStart time.Time
	Start         time.Time
	End           time.Time
	IsException   bool

	Title       string
	Description string
	Location    string
}

// Limits bounds an expansion so an open-ended or far-reaching rule always
// terminates.
type Limits struct {
	MaxOccurrences int
	// MaxSpanDays caps how far past the anchor date the walk goes.
	MaxSpanDays int
}

var DefaultLimits = Limits{
	MaxOccurrences: 1000,
	MaxSpanDays:    2 * 366,
}

func (l Limits) normalize() Limits {
	if l.MaxOccurrences <= 0 {
		l.MaxOccurrences = DefaultLimits.MaxOccurrences
	}
	if l.MaxSpanDays <= 0 {
		l.MaxSpanDays = DefaultLimits.MaxSpanDays
	}
	return l
}

type Expansion struct {
	Occurrences []Occurrence
	// Truncated is set when a limit stopped the walk before Until.
	Truncated bool
	// TimezoneFallback is set when the descriptor's zone was unknown and
	// UTC was used instead.
	TimezoneFallback bool
}

// Materialize expands d with DefaultLimits.
func Materialize(d Descriptor) ([]Occurrence, error) {
	exp, err := Expand(d, DefaultLimits)
	if err != nil {
		return nil, err
	}
	return exp.Occurrences, nil
}

// Expand walks local calendar dates from the anchor to Until (inclusive)
// and emits an occurrence for every date the rule selects. Each occurrence
// keeps the anchor's wall-clock time and is converted to UTC with the
// offset valid on its own date, so a 09:30 class stays at 09:30 across a
// DST change. The result is ordered by start and free of duplicates.
func Expand(d Descriptor, limits Limits) (Expansion, error) {
	r, err := d.resolve()
	if err != nil {
		return Expansion{}, err
	}
	limits = limits.normalize()
	exp := Expansion{TimezoneFallback: r.fellBack}

	last := r.anchor.AddDays(limits.MaxSpanDays)
	open := r.until.IsZero()
	if !open {
		if r.until.Before(r.anchor) {
			return exp, nil
		}
		if r.until.Before(last) {
			last = r.until
		}
	}

	seen := make(map[int64]struct{})
	for date := r.anchor; !date.After(last); date = date.AddDays(1) {
		if !r.selects(date) {
			continue
		}
		if len(exp.Occurrences) >= limits.MaxOccurrences {
			exp.Truncated = true
			break
		}
		start := At(date, r.clock, r.loc)
		if _, dup := seen[start.Unix()]; dup {
			continue
		}
		seen[start.Unix()] = struct{}{}
		exp.Occurrences = append(exp.Occurrences, Occurrence{
			OriginalStart: start,
			Start:         start,
			End:           start.Add(r.duration),
			Title:         d.Title,
			Description:   d.Description,
			Location:      d.Location,
		})
	}
	// an open rule always has more to give past the span limit
	if open || last.Before(r.until) {
		exp.Truncated = true
	}
	return exp, nil
}

func (r resolved) selects(date Date) bool {
	switch r.freq {
	case Daily:
		return date.DaysSince(r.anchor)%r.interval == 0
	case Monthly:
		return date.Day == r.anchor.Day && date.MonthsSince(r.anchor)%r.interval == 0
	default:
		if !r.days[date.Weekday()] {
			return false
		}
		return (date.DaysSince(r.anchor)/7)%r.interval == 0
	}
}
